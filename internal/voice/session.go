package voice

import (
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultPauseTimeout = 8 * time.Second

	wakeAcknowledgement = "Yes? I'm listening. What would you like me to do?"
	wakeContinuation    = "Okay, continuing. Say 'hey' anytime!"
)

var defaultWakePhrases = []string{"hey", "mr v", "mr. v", "mister v", "vista"}

// SessionConfig wires a per-screen session. All callbacks are optional
// and are invoked from the manager's delivery path.
type SessionConfig struct {
	Owner        OwnerID
	UserType     string
	PauseTimeout time.Duration
	WakePhrases  []string
	OnTranscript func(text string, isFinal bool)
	OnCommand    func(text string)
	OnDigits     func(digits string)
	OnDenied     func(holder OwnerID)
}

// Session is one screen's conversation with the microphone. A wake
// phrase pauses command handling and answers back; the pause resumes
// on its own after the timeout unless another wake phrase lands first.
type Session struct {
	mu         sync.Mutex
	log        *logrus.Logger
	manager    IManager
	cfg        SessionConfig
	transcript string
	paused     bool
	closed     bool
	pauseGen   int
	pauseTimer *time.Timer
}

func NewSession(log *logrus.Logger, manager IManager, cfg SessionConfig) *Session {
	if cfg.PauseTimeout <= 0 {
		cfg.PauseTimeout = defaultPauseTimeout
	}
	if len(cfg.WakePhrases) == 0 {
		cfg.WakePhrases = defaultWakePhrases
	}

	s := &Session{
		log:     log,
		manager: manager,
		cfg:     cfg,
	}
	manager.Subscribe(cfg.Owner, s.handleEvent)
	return s
}

// Start requests the microphone. A false return means another screen
// holds it; the OnDenied callback will have fired with the holder.
func (s *Session) Start() bool {
	return s.manager.Acquire(s.cfg.Owner)
}

// Close tears the session down. Pending pause timers are cancelled so
// no callback of a closed session can fire afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.paused = false
	s.pauseGen++
	if s.pauseTimer != nil {
		s.pauseTimer.Stop()
		s.pauseTimer = nil
	}
	s.mu.Unlock()

	s.manager.Unsubscribe(s.cfg.Owner)
	s.manager.Release(s.cfg.Owner)
}

// Speak voices a line on behalf of this screen.
func (s *Session) Speak(text string) {
	s.manager.Speak(text)
}

func (s *Session) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

func (s *Session) handleEvent(ev Event) {
	switch ev.Type {
	case EventTranscript:
		s.handleTranscript(ev.Transcript, ev.IsFinal)
	case EventDenied:
		s.log.WithFields(logrus.Fields{
			"owner":  s.cfg.Owner,
			"holder": ev.Owner,
		}).Debug("Microphone held by another screen")
		if s.cfg.OnDenied != nil {
			s.cfg.OnDenied(ev.Owner)
		}
	}
}

func (s *Session) handleTranscript(text string, isFinal bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.transcript = text
	paused := s.paused
	s.mu.Unlock()

	if s.cfg.OnTranscript != nil {
		s.cfg.OnTranscript(text, isFinal)
	}
	if !isFinal {
		return
	}

	lower := strings.ToLower(strings.TrimSpace(text))

	if s.containsWakePhrase(lower) {
		s.handleWake()
		return
	}

	// While paused only wake phrases get through.
	if paused {
		return
	}

	// Digit capture and command handling both see every final
	// utterance; words like "to" or "for" read as digits, so capturing
	// them must not keep the command from being classified.
	if s.cfg.OnDigits != nil {
		if digits := ExtractDigits(text); digits != "" {
			s.cfg.OnDigits(digits)
		}
	}

	if s.cfg.OnCommand != nil {
		s.cfg.OnCommand(text)
	}
}

func (s *Session) containsWakePhrase(lower string) bool {
	for _, phrase := range s.cfg.WakePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// handleWake pauses command handling, acknowledges out loud, and arms
// the auto-resume timer. A second wake phrase re-arms the timer: the
// generation counter keeps a stale timer from resuming a newer pause.
func (s *Session) handleWake() {
	s.manager.StopSpeaking()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.paused = true
	s.pauseGen++
	gen := s.pauseGen
	if s.pauseTimer != nil {
		s.pauseTimer.Stop()
	}
	s.pauseTimer = time.AfterFunc(s.cfg.PauseTimeout, func() { s.resume(gen) })
	s.mu.Unlock()

	s.log.WithField("owner", s.cfg.Owner).Debug("Wake phrase heard, pausing")
	s.manager.Speak(wakeAcknowledgement)
}

func (s *Session) resume(gen int) {
	s.mu.Lock()
	if s.closed || !s.paused || gen != s.pauseGen {
		s.mu.Unlock()
		return
	}
	s.paused = false
	s.mu.Unlock()

	s.log.WithField("owner", s.cfg.Owner).Debug("Pause timed out, resuming")
	s.manager.Speak(wakeContinuation)
}
