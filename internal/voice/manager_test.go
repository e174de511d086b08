package voice

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	mu       sync.Mutex
	starts   int
	stops    int
	onResult func(transcript string, isFinal bool)
	onEnd    func()
}

func (f *fakeRecognizer) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return nil
}

func (f *fakeRecognizer) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeRecognizer) SetHandler(onResult func(string, bool), onEnd func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onResult = onResult
	f.onEnd = onEnd
}

func (f *fakeRecognizer) emit(text string, isFinal bool) {
	f.mu.Lock()
	fn := f.onResult
	f.mu.Unlock()
	if fn != nil {
		fn(text, isFinal)
	}
}

func (f *fakeRecognizer) emitEnd() {
	f.mu.Lock()
	fn := f.onEnd
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (f *fakeRecognizer) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

type fakeSynthesizer struct {
	mu      sync.Mutex
	spoken  []string
	cancels int
	last    SpeechRequest
}

func (f *fakeSynthesizer) Speak(req SpeechRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, req.Text)
	f.last = req
	return nil
}

func (f *fakeSynthesizer) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeSynthesizer) spokenTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.spoken))
	copy(out, f.spoken)
	return out
}

func (f *fakeSynthesizer) cancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancels
}

func (f *fakeSynthesizer) finishLast() {
	f.mu.Lock()
	req := f.last
	f.mu.Unlock()
	if req.OnEnd != nil {
		req.OnEnd()
	}
}

// reentrantRecognizer reads ownership back from the manager on every
// call, the way the websocket hub does to find the screen to signal.
type reentrantRecognizer struct {
	mu          sync.Mutex
	mgr         IManager
	startOwners []OwnerID
	stopOwners  []OwnerID
	onEnd       func()
}

func (f *reentrantRecognizer) Start() error {
	owner := f.mgr.CurrentOwner()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startOwners = append(f.startOwners, owner)
	return nil
}

func (f *reentrantRecognizer) Stop() error {
	owner := f.mgr.CurrentOwner()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopOwners = append(f.stopOwners, owner)
	return nil
}

func (f *reentrantRecognizer) SetHandler(_ func(string, bool), onEnd func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onEnd = onEnd
}

func (f *reentrantRecognizer) emitEnd() {
	f.mu.Lock()
	fn := f.onEnd
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func TestAcquireAssignsOwnerAndStartsListening(t *testing.T) {
	rec := &fakeRecognizer{}
	m := NewManager(testLogger(), rec, &fakeSynthesizer{})

	require.True(t, m.Acquire("landing"))

	assert.Equal(t, OwnerID("landing"), m.CurrentOwner())
	assert.True(t, m.IsListening())
	assert.Equal(t, 1, rec.startCount())
}

func TestAcquireDeniedNotifiesRequesterWithHolder(t *testing.T) {
	m := NewManager(testLogger(), &fakeRecognizer{}, &fakeSynthesizer{})
	recorder := &eventRecorder{}
	m.Subscribe("modal", recorder.record)

	require.True(t, m.Acquire("landing"))
	assert.False(t, m.Acquire("modal"))

	events := recorder.all()
	require.Len(t, events, 1)
	assert.Equal(t, EventDenied, events[0].Type)
	assert.Equal(t, OwnerID("landing"), events[0].Owner)
	assert.Equal(t, OwnerID("landing"), m.CurrentOwner())
}

func TestAcquireBySameOwnerIsIdempotent(t *testing.T) {
	rec := &fakeRecognizer{}
	m := NewManager(testLogger(), rec, &fakeSynthesizer{})

	require.True(t, m.Acquire("landing"))
	require.True(t, m.Acquire("landing"))

	assert.Equal(t, 1, rec.startCount())
}

func TestReleaseByNonOwnerIsIgnored(t *testing.T) {
	m := NewManager(testLogger(), &fakeRecognizer{}, &fakeSynthesizer{})

	require.True(t, m.Acquire("landing"))
	m.Release("modal")

	assert.Equal(t, OwnerID("landing"), m.CurrentOwner())
	assert.True(t, m.IsListening())
}

func TestReleaseStopsListening(t *testing.T) {
	rec := &fakeRecognizer{}
	m := NewManager(testLogger(), rec, &fakeSynthesizer{})
	recorder := &eventRecorder{}
	m.Subscribe("landing", recorder.record)

	require.True(t, m.Acquire("landing"))
	m.Release("landing")

	assert.Equal(t, OwnerNone, m.CurrentOwner())
	assert.False(t, m.IsListening())

	var sawReleased bool
	for _, ev := range recorder.all() {
		if ev.Type == EventReleased {
			sawReleased = true
		}
	}
	assert.True(t, sawReleased)
}

func TestTransferMovesOwnership(t *testing.T) {
	m := NewManager(testLogger(), &fakeRecognizer{}, &fakeSynthesizer{})
	from := &eventRecorder{}
	to := &eventRecorder{}
	m.Subscribe("landing", from.record)
	m.Subscribe("modal", to.record)

	require.True(t, m.Acquire("landing"))
	require.True(t, m.Transfer("landing", "modal"))

	assert.Equal(t, OwnerID("modal"), m.CurrentOwner())
	assert.True(t, m.IsListening())

	fromEvents := from.all()
	assert.Equal(t, EventReleased, fromEvents[len(fromEvents)-1].Type)
	toEvents := to.all()
	require.NotEmpty(t, toEvents)
	assert.Equal(t, EventAcquired, toEvents[len(toEvents)-1].Type)
}

func TestTransferByNonOwnerFails(t *testing.T) {
	m := NewManager(testLogger(), &fakeRecognizer{}, &fakeSynthesizer{})

	require.True(t, m.Acquire("landing"))
	assert.False(t, m.Transfer("modal", "dashboard"))
	assert.Equal(t, OwnerID("landing"), m.CurrentOwner())
}

func TestTranscriptsReachOnlyCurrentOwner(t *testing.T) {
	rec := &fakeRecognizer{}
	m := NewManager(testLogger(), rec, &fakeSynthesizer{})
	landing := &eventRecorder{}
	modal := &eventRecorder{}
	m.Subscribe("landing", landing.record)
	m.Subscribe("modal", modal.record)

	require.True(t, m.Acquire("landing"))
	rec.emit("hello", true)

	require.True(t, m.Transfer("landing", "modal"))
	rec.emit("world", true)

	var landingTranscripts, modalTranscripts []string
	for _, ev := range landing.all() {
		if ev.Type == EventTranscript {
			landingTranscripts = append(landingTranscripts, ev.Transcript)
		}
	}
	for _, ev := range modal.all() {
		if ev.Type == EventTranscript {
			modalTranscripts = append(modalTranscripts, ev.Transcript)
		}
	}

	assert.Equal(t, []string{"hello"}, landingTranscripts)
	assert.Equal(t, []string{"world"}, modalTranscripts)
}

func TestRecognitionRestartsAfterNaturalEnd(t *testing.T) {
	rec := &fakeRecognizer{}
	m := NewManager(testLogger(), rec, &fakeSynthesizer{})

	require.True(t, m.Acquire("landing"))
	require.Equal(t, 1, rec.startCount())

	rec.emitEnd()
	assert.Eventually(t, func() bool {
		return rec.startCount() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestNoRestartAfterRelease(t *testing.T) {
	rec := &fakeRecognizer{}
	m := NewManager(testLogger(), rec, &fakeSynthesizer{})

	require.True(t, m.Acquire("landing"))
	m.Release("landing")
	rec.emitEnd()

	time.Sleep(3 * restartDelay)
	assert.Equal(t, 1, rec.startCount())
}

func TestAcquireReleaseWithRecognizerReadingOwnerBack(t *testing.T) {
	rec := &reentrantRecognizer{}
	m := NewManager(testLogger(), rec, &fakeSynthesizer{})
	rec.mgr = m

	okCh := make(chan bool, 1)
	go func() {
		ok := m.Acquire("landing")
		m.Release("landing")
		okCh <- ok
	}()

	select {
	case ok := <-okCh:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("acquire/release did not return with a recognizer that reads ownership back")
	}

	assert.Equal(t, OwnerNone, m.CurrentOwner())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []OwnerID{"landing"}, rec.startOwners)
	// Stop still sees the holder, so the stop signal reaches its screen.
	assert.Equal(t, []OwnerID{"landing"}, rec.stopOwners)
}

func TestRestartWithRecognizerReadingOwnerBack(t *testing.T) {
	rec := &reentrantRecognizer{}
	m := NewManager(testLogger(), rec, &fakeSynthesizer{})
	rec.mgr = m

	require.True(t, m.Acquire("landing"))
	rec.emitEnd()

	assert.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.startOwners) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestSpeakCancelsPriorUtterance(t *testing.T) {
	synth := &fakeSynthesizer{}
	m := NewManager(testLogger(), &fakeRecognizer{}, synth)

	m.Speak("first")
	m.Speak("second")

	assert.Equal(t, []string{"first", "second"}, synth.spokenTexts())
	assert.Equal(t, 2, synth.cancelCount())
	assert.True(t, m.IsSpeaking())

	synth.finishLast()
	assert.False(t, m.IsSpeaking())
}

func TestSpeakingClearedOnSynthesisError(t *testing.T) {
	synth := &fakeSynthesizer{}
	m := NewManager(testLogger(), &fakeRecognizer{}, synth)

	m.Speak("hello")
	synth.mu.Lock()
	onError := synth.last.OnError
	synth.mu.Unlock()
	onError(assert.AnError)

	assert.False(t, m.IsSpeaking())
}

func TestNilRecognizerStillAssignsOwnership(t *testing.T) {
	m := NewManager(testLogger(), nil, &fakeSynthesizer{})

	require.True(t, m.Acquire("landing"))
	assert.Equal(t, OwnerID("landing"), m.CurrentOwner())
	assert.False(t, m.IsListening())
}

func TestNilSynthesizerSpeakIsNoop(t *testing.T) {
	m := NewManager(testLogger(), &fakeRecognizer{}, nil)

	m.Speak("hello")
	assert.False(t, m.IsSpeaking())
}
