package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/enviarzap/whatsapp-link-sender/pkg/log"
)

// RunPhase is the observable state of a bulk run.
type RunPhase string

const (
	PhaseIdle                RunPhase = "idle"
	PhaseActive              RunPhase = "active"
	PhaseWaitingConfirmation RunPhase = "waiting_confirmation"
	PhaseCountingDown        RunPhase = "counting_down"
	PhasePaused              RunPhase = "paused"
	PhaseCompleted           RunPhase = "completed"
	PhaseCancelled           RunPhase = "cancelled"
	PhaseFailed              RunPhase = "failed"
)

// Terminal reports whether the phase is an end state.
func (p RunPhase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseCancelled || p == PhaseFailed
}

// Progress texts shown to the user, kept verbatim from the product UI.
const (
	msgRunStarting  = "✨ Iniciando processo de envio..."
	msgNextContact  = "📱 Próximo envio: "
	msgLastContact  = "📱 Último contato do envio: "
	msgContactSent  = "✅ Mensagem enviada com sucesso!"
	msgRunCompleted = "🎉 Envio concluído com sucesso!"
	msgRunCancelled = "Envio cancelado"
)

// SendingStatus is the live snapshot of one bulk run, published to the UI
// after every transition.
type SendingStatus struct {
	RunID               string        `json:"run_id"`
	Phase               RunPhase      `json:"phase"`
	IsActive            bool          `json:"is_active"`
	CurrentBlock        int           `json:"current_block"`
	TotalBlocks         int           `json:"total_blocks"`
	CurrentContact      int           `json:"current_contact"`
	TotalContacts       int           `json:"total_contacts"`
	WaitingConfirmation bool          `json:"waiting_confirmation"`
	Error               string        `json:"error,omitempty"`
	Message             string        `json:"message,omitempty"`
	RemainingTime       time.Duration `json:"-"`
	CurrentLinks        *ChatLinks    `json:"current_links,omitempty"`
	OpenPlan            *ChatOpenPlan `json:"open_plan,omitempty"`
}

// RunConfig paces one bulk run. The form UI enforces its own tighter ranges;
// the runner tolerates any positive values.
type RunConfig struct {
	MessageInterval time.Duration
	BlockSize       int
	BlockPause      time.Duration
	// PreSendDelay lets the form's scroll animation settle before the
	// first chat opens. Cosmetic only.
	PreSendDelay time.Duration
	// Tick is the cadence of RemainingTime updates during the countdown.
	Tick time.Duration
}

var (
	ErrNoContacts    = errors.New("no contacts with a phone number")
	ErrEmptyTemplate = errors.New("message template is empty and was not confirmed")
	ErrRunActive     = errors.New("a bulk run is already active")
	ErrNotWaiting    = errors.New("run is not waiting for confirmation")
	ErrRunFinished   = errors.New("run already finished")
)

// LimitError is a rate-limiter rejection: expected control flow carrying the
// limiter's user-facing message, not a programming error.
type LimitError struct {
	Status LimitStatus
}

func (e *LimitError) Error() string {
	return e.Status.Message
}

// StartOptions carries the interactive guards the caller already cleared.
type StartOptions struct {
	// AllowEmptyTemplate must be set when the template is blank: the UI has
	// to ask the user explicitly before sending contacts their raw data (or
	// nothing at all).
	AllowEmptyTemplate bool
}

// Runner drives one bulk send: contacts in blocks, one chat window at a time,
// a manual confirmation gate plus a minimum interval per contact, and a pause
// between blocks. Suspension points (confirmation wait, countdown, pauses)
// all honor the run's cancellation context.
type Runner struct {
	id       string
	device   DeviceKind
	contacts []Contact
	template string
	cfg      RunConfig
	opener   LinkOpener
	limiter  *Limiter
	onStatus func(SendingStatus)

	started      atomic.Bool
	confirmArmed atomic.Bool
	confirm      chan struct{}
	done         chan struct{}

	mu       sync.Mutex
	status   SendingStatus
	cancel   context.CancelFunc
	finished time.Time
}

// NewRunner builds a runner over the given contacts. Contacts without a phone
// are dropped here as well, not only in the form.
func NewRunner(device DeviceKind, contacts []Contact, template string, cfg RunConfig, opener LinkOpener, limiter *Limiter) *Runner {
	valid := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if strings.TrimSpace(c.Phone) != "" {
			valid = append(valid, c)
		}
	}

	if cfg.BlockSize < 1 {
		cfg.BlockSize = 1
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}

	r := &Runner{
		id:       uuid.NewString(),
		device:   device,
		contacts: valid,
		template: template,
		cfg:      cfg,
		opener:   opener,
		limiter:  limiter,
		confirm:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	r.status = SendingStatus{RunID: r.id, Phase: PhaseIdle}
	return r
}

func (r *Runner) ID() string {
	return r.id
}

// OnStatus registers a listener invoked with a snapshot after every status
// transition. Must be set before Start.
func (r *Runner) OnStatus(fn func(SendingStatus)) {
	r.onStatus = fn
}

// Start validates the run against the rate limiter and launches the send
// loop. A rejection aborts before any link is opened and records no partial
// progress; the attempt itself still counts on the spam track.
func (r *Runner) Start(opts StartOptions) error {
	if len(r.contacts) == 0 {
		return ErrNoContacts
	}
	if strings.TrimSpace(r.template) == "" && !opts.AllowEmptyTemplate {
		return ErrEmptyTemplate
	}
	if !r.started.CompareAndSwap(false, true) {
		return ErrRunActive
	}

	r.limiter.RecordRequest()
	if r.limiter.CheckSpam() {
		r.started.Store(false)
		return &LimitError{Status: LimitStatus{Message: MsgSpamDetected, Blocked: true}}
	}
	if st := r.limiter.CheckBulk(len(r.contacts)); !st.CanSend {
		r.started.Store(false)
		return &LimitError{Status: st}
	}

	totalBlocks := (len(r.contacts) + r.cfg.BlockSize - 1) / r.cfg.BlockSize
	ctx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	r.cancel = cancel
	r.status.Phase = PhaseActive
	r.status.IsActive = true
	r.status.CurrentBlock = 1
	r.status.TotalBlocks = totalBlocks
	r.status.TotalContacts = len(r.contacts)
	r.status.Message = msgRunStarting
	snapshot := r.status
	r.mu.Unlock()
	r.publish(snapshot)

	log.RunOp(r.id, "start").
		WithField("contacts", len(r.contacts)).
		WithField("blocks", totalBlocks).
		WithField("device", string(r.device)).
		Info("Bulk run started")

	go r.run(ctx)
	return nil
}

// Confirm resumes the step parked in WaitingConfirmation. Exactly one
// confirmation is consumed per gate; extra calls report ErrNotWaiting.
func (r *Runner) Confirm() error {
	if !r.confirmArmed.CompareAndSwap(true, false) {
		return ErrNotWaiting
	}
	select {
	case r.confirm <- struct{}{}:
		return nil
	case <-r.done:
		return ErrRunFinished
	}
}

// Cancel interrupts the run at its next suspension point. Cancelled runs
// never touch the rate limiter's bulk track.
func (r *Runner) Cancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Status returns a copy of the current snapshot.
func (r *Runner) Status() SendingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.status
	if r.status.CurrentLinks != nil {
		links := *r.status.CurrentLinks
		s.CurrentLinks = &links
	}
	if r.status.OpenPlan != nil {
		plan := *r.status.OpenPlan
		s.OpenPlan = &plan
	}
	return s
}

// Done closes when the run reaches a terminal phase.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// FinishedAt reports when the run reached its terminal phase.
func (r *Runner) FinishedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.done)
	defer func() {
		if rec := recover(); rec != nil {
			r.fail(fmt.Sprintf("%v", rec))
		}
	}()

	if err := r.sleep(ctx, r.cfg.PreSendDelay); err != nil {
		r.markCancelled()
		return
	}

	total := len(r.contacts)
	for blockStart := 0; blockStart < total; blockStart += r.cfg.BlockSize {
		blockIndex := blockStart/r.cfg.BlockSize + 1
		end := min(blockStart+r.cfg.BlockSize, total)

		r.setStatus(func(s *SendingStatus) {
			s.Phase = PhaseActive
			s.CurrentBlock = blockIndex
			s.WaitingConfirmation = false
			s.Message = fmt.Sprintf("📬 Iniciando bloco %d de %d", blockIndex, s.TotalBlocks)
		})

		for i, contact := range r.contacts[blockStart:end] {
			overall := blockStart + i
			lastOverall := overall == total-1

			message, _ := ResolveTemplate(r.template, contact)
			links := BuildChatLinks(r.device, contact.Phone, message)
			plan := OpenPlanFor(r.device)

			r.confirmArmed.Store(true)
			r.setStatus(func(s *SendingStatus) {
				s.Phase = PhaseWaitingConfirmation
				s.CurrentContact = overall + 1
				s.WaitingConfirmation = true
				s.Error = ""
				s.CurrentLinks = &links
				s.OpenPlan = &plan
				if lastOverall {
					s.Message = msgLastContact + contact.Phone
				} else {
					s.Message = msgNextContact + r.contacts[overall+1].Phone
				}
			})

			window, err := r.opener.Open(ctx, links, plan)
			if err != nil {
				r.fail(err.Error())
				return
			}
			log.SendOp(r.id, "open", NormalizePhone(contact.Phone)).Info("Chat link opened")

			// The manual gate: WhatsApp Web needs a human click to
			// actually dispatch, so the loop never advances on its own.
			select {
			case <-ctx.Done():
				r.markCancelled()
				return
			case <-r.confirm:
			}

			if window != nil {
				window.Close()
			}

			r.setStatus(func(s *SendingStatus) {
				s.Phase = PhaseCountingDown
				s.WaitingConfirmation = false
				s.CurrentLinks = nil
				s.OpenPlan = nil
			})

			// Minimum spacing holds even when the user confirms instantly.
			err = Countdown(ctx, r.cfg.MessageInterval, r.cfg.Tick, func(remaining time.Duration) {
				r.setStatus(func(s *SendingStatus) {
					s.RemainingTime = remaining
				})
			})
			if err != nil {
				r.markCancelled()
				return
			}

			if lastOverall {
				// Straight to the final state - showing one more
				// "next up" message here would just flash.
				r.complete()
				return
			}

			r.setStatus(func(s *SendingStatus) {
				s.Phase = PhaseActive
				s.Message = msgContactSent
				s.RemainingTime = 0
			})
		}

		if end < total {
			r.setStatus(func(s *SendingStatus) {
				s.Phase = PhasePaused
				s.Message = fmt.Sprintf("🕒 Pausa entre blocos: %d minutos", int(r.cfg.BlockPause.Minutes()))
			})
			if err := r.sleep(ctx, r.cfg.BlockPause); err != nil {
				r.markCancelled()
				return
			}
		}
	}
}

func (r *Runner) complete() {
	r.limiter.RecordBulkSend(len(r.contacts))
	r.finish(func(s *SendingStatus) {
		s.Phase = PhaseCompleted
		s.Message = msgRunCompleted
	})
	log.RunOp(r.id, "complete").WithField("contacts", len(r.contacts)).Info("Bulk run completed")
}

func (r *Runner) markCancelled() {
	r.finish(func(s *SendingStatus) {
		s.Phase = PhaseCancelled
		s.Message = msgRunCancelled
	})
	log.RunOp(r.id, "cancel").Info("Bulk run cancelled")
}

func (r *Runner) fail(message string) {
	r.finish(func(s *SendingStatus) {
		s.Phase = PhaseFailed
		s.Error = message
	})
	log.RunOp(r.id, "fail").Error("Bulk run failed: " + message)
}

func (r *Runner) finish(mutate func(*SendingStatus)) {
	r.mu.Lock()
	mutate(&r.status)
	r.status.IsActive = false
	r.status.WaitingConfirmation = false
	r.status.RemainingTime = 0
	r.status.CurrentLinks = nil
	r.status.OpenPlan = nil
	r.finished = time.Now()
	snapshot := r.status
	r.mu.Unlock()
	r.publish(snapshot)
}

func (r *Runner) setStatus(mutate func(*SendingStatus)) {
	r.mu.Lock()
	mutate(&r.status)
	snapshot := r.status
	r.mu.Unlock()
	r.publish(snapshot)
}

func (r *Runner) publish(snapshot SendingStatus) {
	if r.onStatus != nil {
		r.onStatus(snapshot)
	}
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
