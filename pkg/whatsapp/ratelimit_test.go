package whatsapp

import (
	"context"
	"testing"
	"time"
)

func testSettings() LimiterSettings {
	return LimiterSettings{
		MaxBulkSendsPerDay:     5,
		BulkSendCooldown:       time.Minute,
		MaxContactsPerBulk:     100,
		MaxTotalContactsPerDay: 500,
		SpamThreshold:          10,
		SpamWindow:             time.Minute,
		BlockDuration:          5 * time.Minute,
		ResetHour:              0,
		SessionTimeout:         24 * time.Hour,
	}
}

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time {
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// newTestLimiter builds a limiter on a memory store with a controllable clock.
// The state is re-initialized under the stub clock so LastSend and friends
// line up with it.
func newTestLimiter(t *testing.T) (*Limiter, *stubClock) {
	t.Helper()

	clock := &stubClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(context.Background(), testSettings(), NewMemoryLimitStore(), "rate_limit:test")
	l.now = clock.Now
	l.data = l.initialData()
	return l, clock
}

func TestLimiterFreshClientStartsInsideCooldown(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(t)

	status := l.CheckBulk(10)
	if status.CanSend {
		t.Fatal("fresh client should start inside the cooldown window")
	}
	if status.Message != MsgBulkCooldown {
		t.Errorf("Message = %q, want %q", status.Message, MsgBulkCooldown)
	}
	if status.RemainingTime <= 0 || status.RemainingTime > time.Minute {
		t.Errorf("RemainingTime = %v, want within (0, 1m]", status.RemainingTime)
	}
}

func TestLimiterCooldownExpires(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(t)
	clock.Advance(61 * time.Second)

	if status := l.CheckBulk(10); !status.CanSend {
		t.Errorf("expected send allowed after cooldown, got %+v", status)
	}
}

func TestLimiterRecordBulkSendRestartsCooldown(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(t)
	clock.Advance(61 * time.Second)

	l.RecordBulkSend(10)

	status := l.CheckBulk(10)
	if status.CanSend || status.Message != MsgBulkCooldown {
		t.Errorf("expected cooldown right after a send, got %+v", status)
	}

	clock.Advance(61 * time.Second)
	if status := l.CheckBulk(10); !status.CanSend {
		t.Errorf("expected send allowed after second cooldown, got %+v", status)
	}
}

func TestLimiterDailySendCount(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(t)
	for i := 0; i < 5; i++ {
		clock.Advance(61 * time.Second)
		if status := l.CheckBulk(10); !status.CanSend {
			t.Fatalf("send %d rejected: %+v", i+1, status)
		}
		l.RecordBulkSend(10)
	}

	clock.Advance(61 * time.Second)
	status := l.CheckBulk(10)
	if status.CanSend || status.Message != MsgBulkLimitDay {
		t.Errorf("expected daily send cap, got %+v", status)
	}
}

func TestLimiterPerSendContactCap(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(t)
	clock.Advance(61 * time.Second)

	status := l.CheckBulk(101)
	if status.CanSend || status.Message != MsgContactsLimit {
		t.Errorf("expected per-send contact cap, got %+v", status)
	}
	if status := l.CheckBulk(100); !status.CanSend {
		t.Errorf("100 contacts should be allowed, got %+v", status)
	}
}

func TestLimiterDailyContactCap(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(t)
	l.data.Bulk.Count = 1
	l.data.Bulk.TotalContacts = 450
	clock.Advance(61 * time.Second)

	// Exactly at the cap is still allowed; one contact over is not.
	if status := l.CheckBulk(50); !status.CanSend {
		t.Errorf("exactly at the daily cap should be allowed, got %+v", status)
	}
	status := l.CheckBulk(51)
	if status.CanSend || status.Message != MsgTotalContactsLimit {
		t.Errorf("expected daily contact cap, got %+v", status)
	}
}

func TestLimiterCheckOrderCooldownFirst(t *testing.T) {
	t.Parallel()

	// Every rule violated at once; the cooldown message must win.
	l, _ := newTestLimiter(t)
	l.data.Bulk.Count = 99
	l.data.Bulk.TotalContacts = 9999

	status := l.CheckBulk(101)
	if status.Message != MsgBulkCooldown {
		t.Errorf("Message = %q, want cooldown to be reported first", status.Message)
	}
}

func TestLimiterCheckBulkDoesNotMutate(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(t)
	clock.Advance(61 * time.Second)

	for i := 0; i < 3; i++ {
		l.CheckBulk(10)
	}
	snap := l.Snapshot()
	if snap.Bulk.Count != 0 || snap.Bulk.TotalContacts != 0 {
		t.Errorf("CheckBulk mutated state: %+v", snap.Bulk)
	}
}

func TestLimiterSpamBlock(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(t)

	for i := 0; i < 9; i++ {
		l.RecordRequest()
		if l.CheckSpam() {
			t.Fatalf("blocked after %d requests, threshold is 10", i+1)
		}
	}

	l.RecordRequest()
	if !l.CheckSpam() {
		t.Fatal("expected spam block at the threshold")
	}

	// An idle stretch inside the block must not lift it.
	clock.Advance(4 * time.Minute)
	if !l.CheckSpam() {
		t.Fatal("block lifted too early")
	}

	clock.Advance(90 * time.Second)
	if l.CheckSpam() {
		t.Fatal("block should expire after the block duration")
	}
	if l.Snapshot().Requests.Count != 0 {
		t.Error("request count should reset when the block expires")
	}
}

func TestLimiterSpamWindowReset(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(t)
	for i := 0; i < 9; i++ {
		l.RecordRequest()
	}

	clock.Advance(2 * time.Minute)
	if l.CheckSpam() {
		t.Fatal("count should reset once the window has passed")
	}
	if l.Snapshot().Requests.Count != 0 {
		t.Error("request count should be zero after the window reset")
	}
}

func TestLimiterDailyReset(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(t)
	l.data.Bulk.Count = 5
	l.data.Bulk.TotalContacts = 500
	l.data.Bulk.LastReset = clock.Now()

	// The reset hour comes around again after a full session window.
	clock.now = time.Date(2025, 3, 12, 0, 30, 0, 0, time.UTC)

	l.data = l.validateAndReset(l.data)
	if l.data.Bulk.Count != 0 || l.data.Bulk.TotalContacts != 0 {
		t.Errorf("expected fresh state after daily reset, got %+v", l.data.Bulk)
	}
}

func TestLimiterNoResetBeforeSessionWindow(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(t)
	l.data.Bulk.Count = 3
	l.data.Bulk.LastReset = clock.Now()

	// Reset hour reached, but less than a full session window has passed.
	clock.now = time.Date(2025, 3, 11, 0, 30, 0, 0, time.UTC)

	l.data = l.validateAndReset(l.data)
	if l.data.Bulk.Count != 3 {
		t.Errorf("state reset too early: %+v", l.data.Bulk)
	}
}

func TestLimiterCorruptBlobStartsFresh(t *testing.T) {
	t.Parallel()

	store := NewMemoryLimitStore()
	if err := store.Save(context.Background(), "rate_limit:bad", []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	l := NewLimiter(context.Background(), testSettings(), store, "rate_limit:bad")
	snap := l.Snapshot()
	if snap.Bulk.Count != 0 || snap.Requests.Count != 0 {
		t.Errorf("corrupt blob should yield fresh state, got %+v", snap)
	}
}

func TestLimiterPersistenceRoundtrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryLimitStore()
	key := "rate_limit:persist"

	first := NewLimiter(context.Background(), testSettings(), store, key)
	first.RecordBulkSend(42)
	first.RecordRequest()

	second := NewLimiter(context.Background(), testSettings(), store, key)
	snap := second.Snapshot()
	if snap.Bulk.Count != 1 || snap.Bulk.TotalContacts != 42 {
		t.Errorf("bulk state lost across restart: %+v", snap.Bulk)
	}
	if snap.Requests.Count != 1 {
		t.Errorf("request state lost across restart: %+v", snap.Requests)
	}
}

func TestLimiterReset(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(t)
	clock.Advance(61 * time.Second)
	l.RecordBulkSend(100)
	for i := 0; i < 10; i++ {
		l.RecordRequest()
	}

	l.Reset()
	snap := l.Snapshot()
	if snap.Bulk.Count != 0 || snap.Bulk.TotalContacts != 0 {
		t.Errorf("bulk state survived reset: %+v", snap.Bulk)
	}
	if snap.Requests.Count != 0 || snap.Requests.Blocked {
		t.Errorf("request state survived reset: %+v", snap.Requests)
	}
}
