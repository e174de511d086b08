package voice

// OwnerID names the screen holding the microphone ("landing", "modal",
// "dashboard", "vendor").
type OwnerID string

const OwnerNone OwnerID = ""

type EventType string

const (
	EventAcquired   EventType = "acquired"
	EventReleased   EventType = "released"
	EventDenied     EventType = "denied"
	EventTranscript EventType = "transcript"
	EventSpeaking   EventType = "speaking"
)

// Event is delivered to the subscriber of the screen it concerns.
// Owner carries the current holder on denied events so the rejected
// screen can show who has the mic.
type Event struct {
	Type       EventType
	Owner      OwnerID
	Transcript string
	IsFinal    bool
	Speaking   bool
}

type Subscriber func(Event)

// Recognizer is the platform speech-to-text capability. Implementations
// push results through the handler installed with SetHandler. A nil
// Recognizer means the capability is absent: ownership still works but
// no listening loop runs.
type Recognizer interface {
	Start() error
	Stop() error
	SetHandler(onResult func(transcript string, isFinal bool), onEnd func())
}

// SpeechRequest is one utterance handed to the synthesizer. The
// callbacks fire from the synthesis lifecycle; OnEnd and OnError both
// mark the utterance finished.
type SpeechRequest struct {
	Text    string
	Rate    float64
	Pitch   float64
	OnStart func()
	OnEnd   func()
	OnError func(err error)
}

// Synthesizer is the platform text-to-speech capability.
type Synthesizer interface {
	Speak(req SpeechRequest) error
	Cancel()
}
