package voice

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const restartDelay = 100 * time.Millisecond

// IManager arbitrates the single microphone between screens. Exactly
// one owner holds it at a time; transcripts only reach the holder.
// Speaking is not arbitrated.
type IManager interface {
	Acquire(owner OwnerID) bool
	Release(owner OwnerID)
	Transfer(from, to OwnerID) bool
	Speak(text string)
	StopSpeaking()
	Subscribe(owner OwnerID, fn Subscriber)
	Unsubscribe(owner OwnerID)
	CurrentOwner() OwnerID
	IsListening() bool
	IsSpeaking() bool
}

type manager struct {
	mu           sync.Mutex
	log          *logrus.Logger
	recognizer   Recognizer
	synthesizer  Synthesizer
	currentOwner OwnerID
	listening    bool
	speaking     bool
	subscribers  map[OwnerID]Subscriber
	restartTimer *time.Timer
}

func NewManager(log *logrus.Logger, recognizer Recognizer, synthesizer Synthesizer) IManager {
	m := &manager{
		log:         log,
		recognizer:  recognizer,
		synthesizer: synthesizer,
		subscribers: make(map[OwnerID]Subscriber),
	}

	if recognizer != nil {
		recognizer.SetHandler(m.onRecognitionResult, m.onRecognitionEnd)
	}

	return m
}

type delivery struct {
	fn Subscriber
	ev Event
}

// deliver fans events out after the lock is dropped so subscribers can
// call back into the manager.
func deliver(pending []delivery) {
	for _, d := range pending {
		d.fn(d.ev)
	}
}

func (m *manager) notifyLocked(owner OwnerID, ev Event) []delivery {
	if fn, ok := m.subscribers[owner]; ok {
		return []delivery{{fn: fn, ev: ev}}
	}
	return nil
}

func (m *manager) Acquire(owner OwnerID) bool {
	m.mu.Lock()

	if m.currentOwner == owner {
		m.mu.Unlock()
		return true
	}

	if m.currentOwner != OwnerNone {
		m.log.WithFields(logrus.Fields{
			"owner":     m.currentOwner,
			"requester": owner,
		}).Debug("Microphone acquire denied")
		pending := m.notifyLocked(owner, Event{Type: EventDenied, Owner: m.currentOwner})
		m.mu.Unlock()
		deliver(pending)
		return false
	}

	m.currentOwner = owner
	pending := m.notifyLocked(owner, Event{Type: EventAcquired, Owner: owner})

	rec := m.recognizer
	if rec != nil {
		m.listening = true
	}

	m.log.WithField("owner", owner).Debug("Microphone acquired")
	m.mu.Unlock()

	// Start outside the lock: a hub-backed recognizer reads the owner
	// back from the manager to route its signal.
	if rec != nil {
		if err := rec.Start(); err != nil {
			m.log.WithFields(logrus.Fields{
				"owner": owner,
				"error": err.Error(),
			}).Warn("Recognition start failed")
		}
	}

	deliver(pending)
	return true
}

func (m *manager) Release(owner OwnerID) {
	m.mu.Lock()

	if m.currentOwner != owner {
		m.mu.Unlock()
		return
	}

	rec := m.stopListeningLocked()
	m.mu.Unlock()

	// Stop while the owner is still recorded so a hub-backed recognizer
	// can route the stop signal to the holder's screen, and outside the
	// lock because it reads the owner back from the manager.
	if rec != nil {
		if err := rec.Stop(); err != nil {
			m.log.WithField("error", err.Error()).Warn("Recognition stop failed")
		}
	}

	m.mu.Lock()
	if m.currentOwner != owner {
		m.mu.Unlock()
		return
	}
	pending := m.notifyLocked(owner, Event{Type: EventReleased, Owner: owner})
	m.currentOwner = OwnerNone

	m.log.WithField("owner", owner).Debug("Microphone released")
	m.mu.Unlock()
	deliver(pending)
}

// Transfer hands the microphone from one screen to another without
// stopping the recognition loop. Ownership moves even when the target
// has no subscriber yet.
func (m *manager) Transfer(from, to OwnerID) bool {
	m.mu.Lock()

	if m.currentOwner != from {
		m.mu.Unlock()
		return false
	}

	pending := m.notifyLocked(from, Event{Type: EventReleased, Owner: from})
	m.currentOwner = to
	pending = append(pending, m.notifyLocked(to, Event{Type: EventAcquired, Owner: to})...)

	m.log.WithFields(logrus.Fields{
		"from": from,
		"to":   to,
	}).Debug("Microphone transferred")
	m.mu.Unlock()
	deliver(pending)
	return true
}

func (m *manager) Speak(text string) {
	m.mu.Lock()
	synth := m.synthesizer
	if synth == nil {
		m.mu.Unlock()
		return
	}
	m.speaking = true
	owner := m.currentOwner
	pending := m.notifyLocked(owner, Event{Type: EventSpeaking, Owner: owner, Speaking: true})
	m.mu.Unlock()
	deliver(pending)

	// Any utterance already in flight is cancelled first.
	synth.Cancel()

	err := synth.Speak(SpeechRequest{
		Text:    text,
		Rate:    1.0,
		Pitch:   1.0,
		OnEnd:   func() { m.finishSpeaking() },
		OnError: func(err error) { m.finishSpeaking() },
	})
	if err != nil {
		m.log.WithField("error", err.Error()).Warn("Speech synthesis failed")
		m.finishSpeaking()
	}
}

func (m *manager) finishSpeaking() {
	m.mu.Lock()
	m.speaking = false
	owner := m.currentOwner
	pending := m.notifyLocked(owner, Event{Type: EventSpeaking, Owner: owner, Speaking: false})
	m.mu.Unlock()
	deliver(pending)
}

func (m *manager) StopSpeaking() {
	m.mu.Lock()
	synth := m.synthesizer
	m.speaking = false
	m.mu.Unlock()

	if synth != nil {
		synth.Cancel()
	}
}

func (m *manager) Subscribe(owner OwnerID, fn Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[owner] = fn
}

func (m *manager) Unsubscribe(owner OwnerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscribers, owner)
}

func (m *manager) CurrentOwner() OwnerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentOwner
}

func (m *manager) IsListening() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listening
}

func (m *manager) IsSpeaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking
}

// stopListeningLocked clears the listening state and returns the
// recognizer to stop; the caller stops it after dropping the lock.
func (m *manager) stopListeningLocked() Recognizer {
	m.listening = false
	if m.restartTimer != nil {
		m.restartTimer.Stop()
		m.restartTimer = nil
	}
	return m.recognizer
}

func (m *manager) onRecognitionResult(transcript string, isFinal bool) {
	m.mu.Lock()
	owner := m.currentOwner
	if owner == OwnerNone {
		m.mu.Unlock()
		return
	}
	pending := m.notifyLocked(owner, Event{
		Type:       EventTranscript,
		Owner:      owner,
		Transcript: transcript,
		IsFinal:    isFinal,
	})
	m.mu.Unlock()
	deliver(pending)
}

// onRecognitionEnd restarts the loop shortly after a natural stop, as
// long as someone still holds the microphone.
func (m *manager) onRecognitionEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.listening || m.currentOwner == OwnerNone {
		return
	}

	if m.restartTimer != nil {
		m.restartTimer.Stop()
	}
	m.restartTimer = time.AfterFunc(restartDelay, func() {
		m.mu.Lock()
		if !m.listening || m.currentOwner == OwnerNone || m.recognizer == nil {
			m.mu.Unlock()
			return
		}
		rec := m.recognizer
		m.mu.Unlock()

		if err := rec.Start(); err != nil {
			m.log.WithField("error", err.Error()).Warn("Recognition restart failed")
		}
	})
}
