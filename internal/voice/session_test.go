package voice

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionHarness struct {
	rec   *fakeRecognizer
	synth *fakeSynthesizer
	mgr   IManager

	mu       sync.Mutex
	commands []string
	digits   []string
	denials  []OwnerID
}

func newSessionHarness() *sessionHarness {
	h := &sessionHarness{
		rec:   &fakeRecognizer{},
		synth: &fakeSynthesizer{},
	}
	h.mgr = NewManager(testLogger(), h.rec, h.synth)
	return h
}

func (h *sessionHarness) newSession(owner OwnerID, timeout time.Duration, withDigits bool) *Session {
	cfg := SessionConfig{
		Owner:        owner,
		UserType:     "guest",
		PauseTimeout: timeout,
		OnCommand: func(text string) {
			h.mu.Lock()
			h.commands = append(h.commands, text)
			h.mu.Unlock()
		},
		OnDenied: func(holder OwnerID) {
			h.mu.Lock()
			h.denials = append(h.denials, holder)
			h.mu.Unlock()
		},
	}
	if withDigits {
		cfg.OnDigits = func(d string) {
			h.mu.Lock()
			h.digits = append(h.digits, d)
			h.mu.Unlock()
		}
	}
	return NewSession(testLogger(), h.mgr, cfg)
}

func (h *sessionHarness) commandList() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.commands))
	copy(out, h.commands)
	return out
}

func (h *sessionHarness) spokenContains(text string) bool {
	for _, s := range h.synth.spokenTexts() {
		if s == text {
			return true
		}
	}
	return false
}

func TestSessionRoutesFinalCommands(t *testing.T) {
	h := newSessionHarness()
	s := h.newSession("landing", time.Second, false)
	defer s.Close()

	require.True(t, s.Start())
	h.rec.emit("open the partners page", true)

	assert.Equal(t, []string{"open the partners page"}, h.commandList())
}

func TestSessionIgnoresInterimResults(t *testing.T) {
	h := newSessionHarness()
	s := h.newSession("landing", time.Second, false)
	defer s.Close()

	require.True(t, s.Start())
	h.rec.emit("open the part", false)

	assert.Empty(t, h.commandList())
	assert.Equal(t, "open the part", s.Transcript())
}

func TestWakePhrasePausesAndAcknowledges(t *testing.T) {
	h := newSessionHarness()
	s := h.newSession("landing", time.Second, false)
	defer s.Close()

	require.True(t, s.Start())
	h.rec.emit("hey mr v", true)

	assert.True(t, s.IsPaused())
	assert.True(t, h.spokenContains(wakeAcknowledgement))
	assert.Empty(t, h.commandList())
}

func TestPauseAutoResumesAfterTimeout(t *testing.T) {
	h := newSessionHarness()
	s := h.newSession("landing", 40*time.Millisecond, false)
	defer s.Close()

	require.True(t, s.Start())
	h.rec.emit("hey", true)
	require.True(t, s.IsPaused())

	assert.Eventually(t, func() bool { return !s.IsPaused() }, time.Second, 5*time.Millisecond)
	assert.True(t, h.spokenContains(wakeContinuation))
}

func TestNewWakePhraseRestartsResumeTimer(t *testing.T) {
	h := newSessionHarness()
	s := h.newSession("landing", 60*time.Millisecond, false)
	defer s.Close()

	require.True(t, s.Start())
	h.rec.emit("hey", true)

	time.Sleep(35 * time.Millisecond)
	h.rec.emit("hey again", true)

	// The first timer would have fired by now; the re-armed one keeps
	// the session paused.
	time.Sleep(35 * time.Millisecond)
	assert.True(t, s.IsPaused())

	assert.Eventually(t, func() bool { return !s.IsPaused() }, time.Second, 5*time.Millisecond)
}

func TestCommandsIgnoredWhilePaused(t *testing.T) {
	h := newSessionHarness()
	s := h.newSession("landing", 40*time.Millisecond, false)
	defer s.Close()

	require.True(t, s.Start())
	h.rec.emit("hey", true)
	h.rec.emit("open partners", true)

	assert.Empty(t, h.commandList())

	require.Eventually(t, func() bool { return !s.IsPaused() }, time.Second, 5*time.Millisecond)
	h.rec.emit("open partners", true)
	assert.Equal(t, []string{"open partners"}, h.commandList())
}

func TestSessionExtractsDigits(t *testing.T) {
	h := newSessionHarness()
	s := h.newSession("landing", time.Second, true)
	defer s.Close()

	require.True(t, s.Start())
	h.rec.emit("seven oh three", true)

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, []string{"703"}, h.digits)
	assert.Equal(t, []string{"seven oh three"}, h.commands)
}

func TestDigitCaptureDoesNotSwallowCommands(t *testing.T) {
	h := newSessionHarness()
	s := h.newSession("landing", time.Second, true)
	defer s.Close()

	require.True(t, s.Start())

	// "to" reads as the digit 2; the navigation command must still go
	// through the command handler.
	h.rec.emit("go to vendors", true)

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, []string{"go to vendors"}, h.commands)
	assert.Equal(t, []string{"2"}, h.digits)
}

func TestCloseCancelsPendingResume(t *testing.T) {
	h := newSessionHarness()
	s := h.newSession("landing", 30*time.Millisecond, false)

	require.True(t, s.Start())
	h.rec.emit("hey", true)
	s.Close()

	time.Sleep(60 * time.Millisecond)
	assert.False(t, h.spokenContains(wakeContinuation))
	assert.Equal(t, OwnerNone, h.mgr.CurrentOwner())
}

func TestSecondSessionIsDeniedWhileFirstHolds(t *testing.T) {
	h := newSessionHarness()
	first := h.newSession("landing", time.Second, false)
	defer first.Close()
	second := h.newSession("modal", time.Second, false)
	defer second.Close()

	require.True(t, first.Start())
	assert.False(t, second.Start())

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.denials, 1)
	assert.Equal(t, OwnerID("landing"), h.denials[0])
}
