package websocketPkg

import (
	"VistaVoice/internal/voice"
	"errors"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

// ServerFrame goes down to the browser: listen_start, listen_stop,
// speak, acquired, released, denied, navigate.
type ServerFrame struct {
	Type   string  `json:"type"`
	Text   string  `json:"text,omitempty"`
	Rate   float64 `json:"rate,omitempty"`
	Pitch  float64 `json:"pitch,omitempty"`
	Owner  string  `json:"owner,omitempty"`
	Action string  `json:"action,omitempty"`
	Route  string  `json:"route,omitempty"`
}

// ClientFrame comes up from the browser: utterance, recognition_end,
// speech_end.
type ClientFrame struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	IsFinal bool   `json:"is_final,omitempty"`
}

var ErrNoConnection = errors.New("no websocket connection for owner")

// IHub keeps one live websocket per screen and presents the whole set
// as the Recognizer/Synthesizer pair the voice manager drives. The
// manager decides who owns the microphone; the hub routes frames to
// and from that owner's browser.
type IHub interface {
	voice.Recognizer
	voice.Synthesizer

	AttachManager(m voice.IManager)
	Register(owner voice.OwnerID, conn *websocket.Conn)
	Unregister(owner voice.OwnerID)
	Send(owner voice.OwnerID, frame ServerFrame) error
	Dispatch(owner voice.OwnerID, text string, isFinal bool)
	DispatchEnd(owner voice.OwnerID)
	DispatchSpeechEnd(owner voice.OwnerID)
}

type ownerConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *ownerConn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

type hub struct {
	mu       sync.Mutex
	log      *logrus.Logger
	manager  voice.IManager
	conns    map[voice.OwnerID]*ownerConn
	onResult func(transcript string, isFinal bool)
	onEnd    func()

	speechGen   int
	pendingEnd  func()
	pendingOwns voice.OwnerID
}

func NewHub(log *logrus.Logger) IHub {
	return &hub{
		log:   log,
		conns: make(map[voice.OwnerID]*ownerConn),
	}
}

// AttachManager closes the construction cycle: the manager needs the
// hub as its recognizer, the hub needs the manager for ownership.
func (h *hub) AttachManager(m voice.IManager) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.manager = m
}

func (h *hub) Register(owner voice.OwnerID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[owner] = &ownerConn{conn: conn}
	h.log.WithField("owner", owner).Debug("Voice stream connected")
}

func (h *hub) Unregister(owner voice.OwnerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, owner)
	h.log.WithField("owner", owner).Debug("Voice stream disconnected")
}

func (h *hub) connFor(owner voice.OwnerID) (*ownerConn, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.conns[owner]
	return c, ok
}

func (h *hub) currentOwner() voice.OwnerID {
	h.mu.Lock()
	m := h.manager
	h.mu.Unlock()
	if m == nil {
		return voice.OwnerNone
	}
	return m.CurrentOwner()
}

func (h *hub) Send(owner voice.OwnerID, frame ServerFrame) error {
	c, ok := h.connFor(owner)
	if !ok {
		return ErrNoConnection
	}
	return c.writeJSON(frame)
}

// Start tells the current owner's browser to open its microphone.
func (h *hub) Start() error {
	owner := h.currentOwner()
	if owner == voice.OwnerNone {
		return ErrNoConnection
	}
	return h.Send(owner, ServerFrame{Type: "listen_start"})
}

func (h *hub) Stop() error {
	owner := h.currentOwner()
	if owner == voice.OwnerNone {
		return ErrNoConnection
	}
	return h.Send(owner, ServerFrame{Type: "listen_stop"})
}

func (h *hub) SetHandler(onResult func(string, bool), onEnd func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onResult = onResult
	h.onEnd = onEnd
}

// Speak sends the utterance to the owner's browser for synthesis. The
// request's OnEnd fires when the client reports speech_end; a Cancel
// or a newer Speak drops the older callback.
func (h *hub) Speak(req voice.SpeechRequest) error {
	owner := h.currentOwner()
	if owner == voice.OwnerNone {
		return ErrNoConnection
	}

	h.mu.Lock()
	h.speechGen++
	h.pendingEnd = req.OnEnd
	h.pendingOwns = owner
	h.mu.Unlock()

	err := h.Send(owner, ServerFrame{
		Type:  "speak",
		Text:  req.Text,
		Rate:  req.Rate,
		Pitch: req.Pitch,
	})
	if err != nil {
		h.mu.Lock()
		h.pendingEnd = nil
		h.mu.Unlock()
		return err
	}

	if req.OnStart != nil {
		req.OnStart()
	}
	return nil
}

func (h *hub) Cancel() {
	h.mu.Lock()
	owner := h.pendingOwns
	hadPending := h.pendingEnd != nil
	h.pendingEnd = nil
	h.mu.Unlock()

	if hadPending {
		if err := h.Send(owner, ServerFrame{Type: "speak_cancel"}); err != nil && !errors.Is(err, ErrNoConnection) {
			h.log.WithField("error", err.Error()).Debug("Failed to send speak cancel")
		}
	}
}

// Dispatch feeds a transcript frame into the recognition handler.
// Frames from screens that do not hold the microphone are dropped.
func (h *hub) Dispatch(owner voice.OwnerID, text string, isFinal bool) {
	if owner != h.currentOwner() {
		return
	}
	h.mu.Lock()
	fn := h.onResult
	h.mu.Unlock()
	if fn != nil {
		fn(text, isFinal)
	}
}

func (h *hub) DispatchEnd(owner voice.OwnerID) {
	if owner != h.currentOwner() {
		return
	}
	h.mu.Lock()
	fn := h.onEnd
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (h *hub) DispatchSpeechEnd(owner voice.OwnerID) {
	h.mu.Lock()
	fn := h.pendingEnd
	if owner != h.pendingOwns {
		fn = nil
	}
	h.pendingEnd = nil
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
}
