package whatsapp

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/enviarzap/whatsapp-link-sender/pkg/env"
	"github.com/enviarzap/whatsapp-link-sender/pkg/log"
)

// User-facing rejection texts, kept verbatim from the product UI.
const (
	MsgBulkCooldown       = "Aguarde 1 minuto entre envios em massa"
	MsgBulkLimitDay       = "Limite de 5 envios em massa por dia atingido"
	MsgContactsLimit      = "Limite de 100 contatos por envio atingido"
	MsgTotalContactsLimit = "Limite de 500 contatos por dia atingido"
	MsgSpamDetected       = "Muitas tentativas. Tente novamente em 5 minutos"
)

// BulkTrack is the persisted bulk-send quota state for one client.
type BulkTrack struct {
	Count         int        `json:"count"`
	LastReset     time.Time  `json:"lastReset"`
	LastSend      time.Time  `json:"lastSend"`
	TotalContacts int        `json:"totalContacts"`
	Blocked       bool       `json:"blocked,omitempty"`
	BlockUntil    *time.Time `json:"blockUntil,omitempty"`
}

// RequestTrack is the persisted spam-detection state for one client. It is
// independent of the bulk track: it counts attempts, not successes.
type RequestTrack struct {
	Count       int        `json:"count"`
	LastReset   time.Time  `json:"lastReset"`
	LastRequest time.Time  `json:"lastRequest"`
	Blocked     bool       `json:"blocked,omitempty"`
	BlockUntil  *time.Time `json:"blockUntil,omitempty"`
}

// RateLimitData is the single JSON blob persisted per client key.
type RateLimitData struct {
	Bulk     BulkTrack    `json:"bulk"`
	Requests RequestTrack `json:"requests"`
}

// LimitStatus is the outcome of a bulk-limit check. Rejections are expected
// control flow, not errors.
type LimitStatus struct {
	CanSend       bool          `json:"can_send"`
	RemainingTime time.Duration `json:"-"`
	Message       string        `json:"message,omitempty"`
	Blocked       bool          `json:"blocked"`
}

// LimitStore persists one JSON blob per client key. Load returns (nil, nil)
// for a missing key; callers treat that as "start fresh".
type LimitStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Limiter guards bulk sending for one client key. All state lives in memory
// after the initial load and is flushed to the store after every mutation;
// flush failures degrade to "no memory of prior limits" and are only logged.
type Limiter struct {
	cfg   LimiterSettings
	store LimitStore
	key   string
	now   func() time.Time

	mu      sync.Mutex
	data    RateLimitData
	touched time.Time
}

type LimiterSettings struct {
	MaxBulkSendsPerDay     int
	BulkSendCooldown       time.Duration
	MaxContactsPerBulk     int
	MaxTotalContactsPerDay int
	SpamThreshold          int
	SpamWindow             time.Duration
	BlockDuration          time.Duration
	ResetHour              int
	SessionTimeout         time.Duration
}

// DefaultLimiterSettings reads the quota knobs from the environment, falling
// back to the product defaults.
func DefaultLimiterSettings() LimiterSettings {
	return LimiterSettings{
		MaxBulkSendsPerDay:     env.GetEnvIntOrDefault("RATE_MAX_BULK_SENDS_PER_DAY", 5),
		BulkSendCooldown:       env.GetEnvDurationOrDefault("RATE_BULK_SEND_COOLDOWN", time.Minute),
		MaxContactsPerBulk:     env.GetEnvIntOrDefault("RATE_MAX_CONTACTS_PER_BULK", 100),
		MaxTotalContactsPerDay: env.GetEnvIntOrDefault("RATE_MAX_TOTAL_CONTACTS_PER_DAY", 500),
		SpamThreshold:          env.GetEnvIntOrDefault("RATE_SPAM_THRESHOLD", 10),
		SpamWindow:             env.GetEnvDurationOrDefault("RATE_SPAM_WINDOW", time.Minute),
		BlockDuration:          env.GetEnvDurationOrDefault("RATE_BLOCK_DURATION", 5*time.Minute),
		ResetHour:              env.GetEnvIntOrDefault("RATE_RESET_HOUR", 0),
		SessionTimeout:         env.GetEnvDurationOrDefault("RATE_SESSION_TIMEOUT", 24*time.Hour),
	}
}

// NewLimiter loads (or initializes) the persisted quota blob for key and
// applies the load-time corrections: daily reset and spam-block expiry.
func NewLimiter(ctx context.Context, cfg LimiterSettings, store LimitStore, key string) *Limiter {
	l := &Limiter{
		cfg:   cfg,
		store: store,
		key:   key,
		now:   time.Now,
	}
	l.data = l.load(ctx)
	l.touched = l.now()
	return l
}

func (l *Limiter) initialData() RateLimitData {
	now := l.now()
	return RateLimitData{
		Bulk:     BulkTrack{LastReset: now, LastSend: now},
		Requests: RequestTrack{LastReset: now, LastRequest: now},
	}
}

func (l *Limiter) load(ctx context.Context) RateLimitData {
	raw, err := l.store.Load(ctx, l.key)
	if err != nil {
		log.Print(nil).WithField("key", l.key).Warn("Failed to load rate limit data: " + err.Error())
		return l.initialData()
	}
	if len(raw) == 0 {
		return l.initialData()
	}

	var data RateLimitData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Print(nil).WithField("key", l.key).Warn("Corrupt rate limit data, starting fresh: " + err.Error())
		return l.initialData()
	}
	return l.validateAndReset(data)
}

// validateAndReset applies the two load-time corrections: zero everything when
// the configured reset hour comes around after a full session window, and
// clear an expired spam block.
func (l *Limiter) validateAndReset(data RateLimitData) RateLimitData {
	now := l.now()

	if now.Hour() == l.cfg.ResetHour && now.Sub(data.Bulk.LastReset) > l.cfg.SessionTimeout {
		return l.initialData()
	}

	if data.Requests.Blocked && data.Requests.BlockUntil != nil && !now.Before(*data.Requests.BlockUntil) {
		data.Requests.Blocked = false
		data.Requests.BlockUntil = nil
		data.Requests.Count = 0
	}

	return data
}

// CheckBulk evaluates the bulk-send rules in fixed order and returns the
// first violation: cooldown, daily send count, per-send contact cap, daily
// contact cap. It never mutates state.
func (l *Limiter) CheckBulk(contactCount int) LimitStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.touched = now

	sinceLastSend := now.Sub(l.data.Bulk.LastSend)
	if sinceLastSend < l.cfg.BulkSendCooldown {
		return LimitStatus{
			CanSend:       false,
			RemainingTime: l.cfg.BulkSendCooldown - sinceLastSend,
			Message:       MsgBulkCooldown,
		}
	}

	if l.data.Bulk.Count >= l.cfg.MaxBulkSendsPerDay {
		return LimitStatus{CanSend: false, Message: MsgBulkLimitDay}
	}

	if contactCount > l.cfg.MaxContactsPerBulk {
		return LimitStatus{CanSend: false, Message: MsgContactsLimit}
	}

	if l.data.Bulk.TotalContacts+contactCount > l.cfg.MaxTotalContactsPerDay {
		return LimitStatus{CanSend: false, Message: MsgTotalContactsLimit}
	}

	return LimitStatus{CanSend: true}
}

// BulkStatus reports the current bulk quota state without a pending send.
func (l *Limiter) BulkStatus() LimitStatus {
	return l.CheckBulk(0)
}

// RecordBulkSend books one completed bulk run. Called exactly once per run
// that actually finished - never for rejected or cancelled attempts.
func (l *Limiter) RecordBulkSend(contactCount int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.touched = now
	l.data.Bulk.Count++
	l.data.Bulk.LastSend = now
	l.data.Bulk.TotalContacts += contactCount
	l.persist()
}

// CheckSpam reports whether the client is currently considered abusive. An
// active block holds until its expiry regardless of idle time; outside a
// block the rolling window resets itself once it has passed since the last
// request.
func (l *Limiter) CheckSpam() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.touched = now

	if l.data.Requests.Blocked {
		if l.data.Requests.BlockUntil != nil && !now.Before(*l.data.Requests.BlockUntil) {
			l.data.Requests.Blocked = false
			l.data.Requests.BlockUntil = nil
			l.data.Requests.Count = 0
			l.persist()
			return false
		}
		return true
	}

	if now.Sub(l.data.Requests.LastRequest) > l.cfg.SpamWindow {
		l.data.Requests.Count = 0
		l.data.Requests.LastRequest = now
		l.persist()
		return false
	}

	return l.data.Requests.Count >= l.cfg.SpamThreshold
}

// RecordRequest counts one send attempt on the spam track. Reaching the
// threshold inside the window flips the track into a timed block.
func (l *Limiter) RecordRequest() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.touched = now
	l.data.Requests.Count++
	l.data.Requests.LastRequest = now
	if l.data.Requests.Count >= l.cfg.SpamThreshold {
		until := now.Add(l.cfg.BlockDuration)
		l.data.Requests.Blocked = true
		l.data.Requests.BlockUntil = &until
	}
	l.persist()
}

// Reset wipes the client's quota state back to defaults.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.touched = l.now()
	l.data = l.initialData()
	l.persist()
}

// Snapshot returns a copy of the persisted state for status endpoints.
func (l *Limiter) Snapshot() RateLimitData {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := l.data
	if l.data.Bulk.BlockUntil != nil {
		t := *l.data.Bulk.BlockUntil
		data.Bulk.BlockUntil = &t
	}
	if l.data.Requests.BlockUntil != nil {
		t := *l.data.Requests.BlockUntil
		data.Requests.BlockUntil = &t
	}
	return data
}

// persist flushes under l.mu. Storage failures must never block sending, so
// they are logged and swallowed.
func (l *Limiter) persist() {
	raw, err := json.Marshal(l.data)
	if err != nil {
		log.Print(nil).WithField("key", l.key).Warn("Failed to encode rate limit data: " + err.Error())
		return
	}
	if err := l.store.Save(context.Background(), l.key, raw); err != nil {
		log.Print(nil).WithField("key", l.key).Warn("Failed to save rate limit data: " + err.Error())
	}
}
