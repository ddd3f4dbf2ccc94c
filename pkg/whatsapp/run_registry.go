package whatsapp

import (
	"sync"
	"time"
)

// RunRegistry tracks bulk runs across clients. Each client gets at most one
// live run at a time; finished runs stay resident for a while so the UI can
// still poll their terminal status, then the cron sweep drops them.
type RunRegistry struct {
	mu     sync.Mutex
	runs   map[string]*Runner
	owners map[string]string
	active map[string]string
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{
		runs:   make(map[string]*Runner),
		owners: make(map[string]string),
		active: make(map[string]string),
	}
}

// Start reserves the client's single run slot, starts the runner, and
// registers it. The reservation happens before Start so two concurrent
// requests cannot both launch.
func (g *RunRegistry) Start(clientID string, r *Runner, opts StartOptions) error {
	g.mu.Lock()
	if _, busy := g.active[clientID]; busy {
		g.mu.Unlock()
		return ErrRunActive
	}
	g.active[clientID] = r.ID()
	g.mu.Unlock()

	if err := r.Start(opts); err != nil {
		g.mu.Lock()
		delete(g.active, clientID)
		g.mu.Unlock()
		return err
	}

	g.mu.Lock()
	g.runs[r.ID()] = r
	g.owners[r.ID()] = clientID
	g.mu.Unlock()

	go func() {
		<-r.Done()
		g.mu.Lock()
		if g.active[clientID] == r.ID() {
			delete(g.active, clientID)
		}
		g.mu.Unlock()
	}()
	return nil
}

// Get returns a run by id, live or recently finished.
func (g *RunRegistry) Get(runID string) (*Runner, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.runs[runID]
	return r, ok
}

// Owner reports which client started a run.
func (g *RunRegistry) Owner(runID string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	clientID, ok := g.owners[runID]
	return clientID, ok
}

// ActiveFor returns the client's live run, if any.
func (g *RunRegistry) ActiveFor(clientID string) (*Runner, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	runID, ok := g.active[clientID]
	if !ok {
		return nil, false
	}
	r, ok := g.runs[runID]
	return r, ok
}

// Sweep drops terminal runs that finished more than maxAge ago and reports
// how many were removed.
func (g *RunRegistry) Sweep(maxAge time.Duration) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for id, r := range g.runs {
		select {
		case <-r.Done():
		default:
			continue
		}
		if time.Since(r.FinishedAt()) > maxAge {
			delete(g.runs, id)
			delete(g.owners, id)
			removed++
		}
	}
	return removed
}

// Len reports how many runs are currently resident.
func (g *RunRegistry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.runs)
}
