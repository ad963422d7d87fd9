package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/starboard/internal/counter"
	"github.com/tinytelemetry/starboard/internal/model"
)

type stubFetcher struct {
	mu    sync.Mutex
	count int64
	err   error
	calls int
}

func (f *stubFetcher) FetchCount(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.count, f.err
}

func (f *stubFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// blockingFetcher returns only when its request context is cancelled.
type blockingFetcher struct {
	started chan struct{}
}

func (f *blockingFetcher) FetchCount(ctx context.Context) (int64, error) {
	close(f.started)
	<-ctx.Done()
	return 0, ctx.Err()
}

// gatedFetcher answers only once release is closed, reporting a cancelled
// context if that happens first.
type gatedFetcher struct {
	count   int64
	release chan struct{}
	started chan struct{}

	mu    sync.Mutex
	calls int
}

func (f *gatedFetcher) FetchCount(ctx context.Context) (int64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	f.started <- struct{}{}

	select {
	case <-f.release:
		return f.count, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (f *gatedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPage(f *stubFetcher, clock *fakeClock) *CounterPage {
	return NewCounterPage(CounterPageConfig{
		Fetcher:  f,
		Interval: time.Millisecond,
		Timeout:  time.Second,
		Now:      clock.Now,
	})
}

// loadCount runs a fresh fetch command and returns its result message.
func loadCount(t *testing.T, p *CounterPage) countLoadedMsg {
	t.Helper()
	cmd := p.fetchCmd()
	if cmd == nil {
		t.Fatal("fetchCmd returned nil")
	}
	msg, ok := cmd().(countLoadedMsg)
	if !ok {
		t.Fatalf("fetch produced %T, want countLoadedMsg", msg)
	}
	return msg
}

func digitString(views []counter.DigitView) string {
	var b strings.Builder
	for _, v := range views {
		b.WriteByte(v.Char)
	}
	return b.String()
}

func TestCounterPage_InitialStateRendersZeros(t *testing.T) {
	t.Parallel()

	p := newTestPage(&stubFetcher{}, &fakeClock{t: time.Unix(0, 0)})

	if p.State() != (counter.State{}) {
		t.Fatalf("initial state = %+v", p.State())
	}
	if got := digitString(p.Digits()); got != "00000" {
		t.Fatalf("digits = %q, want 00000", got)
	}
	if len(p.tiles) != model.DigitWidth {
		t.Fatalf("tiles = %d, want %d", len(p.tiles), model.DigitWidth)
	}
}

func TestCounterPage_SuccessfulTickUpdatesState(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Unix(100, 0)}
	p := newTestPage(&stubFetcher{count: 7}, clock)

	cmd := p.Update(loadCount(t, p))
	if cmd == nil {
		t.Fatal("expected an animation frame command")
	}

	if got := p.State(); got != (counter.State{Previous: 0, Current: 7}) {
		t.Fatalf("state = %+v", got)
	}
	views := p.Digits()
	if got := digitString(views); got != "00007" {
		t.Fatalf("digits = %q, want 00007", got)
	}
	for i, v := range views {
		if v.Direction != counter.Down {
			t.Fatalf("position %d direction = %s, want down", i, v.Direction)
		}
	}
	for i := range p.tiles {
		moving := p.tiles[i].moving
		if want := i == 4; moving != want {
			t.Fatalf("tile %d moving = %v, want %v", i, moving, want)
		}
	}
}

func TestCounterPage_SameCountKeepsPrevious(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{count: 12}
	p := newTestPage(f, &fakeClock{t: time.Unix(0, 0)})
	p.Update(loadCount(t, p))
	f.count = 15
	p.Update(loadCount(t, p))

	before := p.State()
	if cmd := p.Update(loadCount(t, p)); cmd != nil {
		t.Fatal("unchanged count scheduled work")
	}
	if p.State() != before || before.Previous != 12 {
		t.Fatalf("state = %+v, want previous 12 kept", p.State())
	}
}

func TestCounterPage_FetchErrorLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{count: 3}
	p := newTestPage(f, &fakeClock{t: time.Unix(0, 0)})
	p.Update(loadCount(t, p))
	before := p.State()

	f.err = errors.New("unexpected end of JSON input")
	p.Update(loadCount(t, p))

	if p.State() != before {
		t.Fatalf("state = %+v, want %+v", p.State(), before)
	}
	if p.seq.InFlight() {
		t.Fatal("failed request still marked in flight")
	}
}

func TestCounterPage_StaleResultIsDropped(t *testing.T) {
	t.Parallel()

	p := newTestPage(&stubFetcher{}, &fakeClock{t: time.Unix(0, 0)})
	first := p.fetchCmd()
	second := p.fetchCmd()
	if first == nil || second == nil {
		t.Fatal("fetchCmd returned nil")
	}

	p.Update(countLoadedMsg{seq: 2, count: 9})
	p.Update(countLoadedMsg{seq: 1, count: 5})

	if got := p.State(); got != (counter.State{Current: 9}) {
		t.Fatalf("state = %+v, want only the latest result applied", got)
	}
}

func TestCounterPage_NewRequestCancelsSuperseded(t *testing.T) {
	t.Parallel()

	bf := &blockingFetcher{started: make(chan struct{})}
	p := NewCounterPage(CounterPageConfig{Fetcher: bf, Timeout: time.Minute})

	first := p.fetchCmd()
	done := make(chan tea.Msg, 1)
	go func() { done <- first() }()
	<-bf.started

	p.seq.Begin(p.ctx)

	select {
	case msg := <-done:
		if cmd := p.Update(msg); cmd != nil {
			t.Fatal("superseded result produced work")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("superseded request was not cancelled")
	}
	if p.State() != (counter.State{}) {
		t.Fatalf("state changed: %+v", p.State())
	}
}

func TestCounterPage_CloseStopsPolling(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{count: 1}
	p := newTestPage(f, &fakeClock{t: time.Unix(0, 0)})
	p.Close()

	if cmd := p.Update(TickMsg(time.Now())); cmd != nil {
		t.Fatal("tick after Close scheduled work")
	}
	if cmd := p.fetchCmd(); cmd != nil {
		t.Fatal("fetchCmd after Close returned a command")
	}
	if f.Calls() != 0 {
		t.Fatalf("fetch calls = %d, want 0", f.Calls())
	}
}

func TestCounterPage_CloseDropsInFlightResult(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{count: 4}
	p := newTestPage(f, &fakeClock{t: time.Unix(0, 0)})
	msg := loadCount(t, p)
	p.Close()

	p.Update(msg)
	if p.State() != (counter.State{}) {
		t.Fatalf("state = %+v after Close", p.State())
	}
}

func TestCounterPage_QuitKeyTearsDown(t *testing.T) {
	t.Parallel()

	p := newTestPage(&stubFetcher{}, &fakeClock{t: time.Unix(0, 0)})
	cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("quit key returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("quit key did not quit")
	}
	if !p.seq.Stopped() {
		t.Fatal("page not torn down on quit")
	}
}

func TestCounterPage_AnimationSettles(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Unix(0, 0)}
	p := newTestPage(&stubFetcher{count: 42000}, clock)
	p.Update(loadCount(t, p))

	clock.Advance(model.TransitionDuration / 2)
	if cmd := p.Update(AnimFrameMsg(clock.Now())); cmd == nil {
		t.Fatal("animation stopped mid-transition")
	}

	clock.Advance(model.TransitionDuration)
	if cmd := p.Update(AnimFrameMsg(clock.Now())); cmd != nil {
		t.Fatal("animation kept running after transition")
	}
	for i := range p.tiles {
		if p.tiles[i].moving || p.tiles[i].hasPrev {
			t.Fatalf("tile %d not settled: %+v", i, p.tiles[i])
		}
	}
}

func TestCounterPage_ViewShowsShell(t *testing.T) {
	t.Parallel()

	p := newTestPage(&stubFetcher{}, &fakeClock{t: time.Unix(0, 0)})
	out := p.View(100, 30)

	for _, want := range []string{"Bruno GitHub Stars", "Go to usebruno.com", "[usebruno/bruno]", "q: quit"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestCounterPage_SlowFetchSurvivesTicks(t *testing.T) {
	t.Parallel()

	f := &gatedFetcher{
		count:   1234,
		release: make(chan struct{}),
		started: make(chan struct{}, 8),
	}
	p := NewCounterPage(CounterPageConfig{
		Fetcher:  f,
		Interval: 20 * time.Millisecond,
		Timeout:  time.Minute,
		Now:      (&fakeClock{t: time.Unix(0, 0)}).Now,
	})

	first := p.fetchCmd()
	done := make(chan tea.Msg, 1)
	go func() { done <- first() }()
	<-f.started

	// Several intervals pass while the request is still running.
	for i := 0; i < 5; i++ {
		if cmd := p.Update(TickMsg(time.Now())); cmd == nil {
			t.Fatal("tick stopped rescheduling while a request was in flight")
		}
	}
	if got := f.Calls(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1 while the first is in flight", got)
	}

	close(f.release)
	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("request did not finish after release")
	}
	if loaded := msg.(countLoadedMsg); loaded.err != nil {
		t.Fatalf("slow request failed: %v", loaded.err)
	}

	p.Update(msg)
	if got := p.State(); got != (counter.State{Current: 1234}) {
		t.Fatalf("state = %+v, want slow result applied", got)
	}
	if p.seq.InFlight() {
		t.Fatal("request still marked in flight after its result")
	}
}

func TestCounterPage_TickFetchesAgainAfterResult(t *testing.T) {
	t.Parallel()

	f := &gatedFetcher{
		count:   7,
		release: make(chan struct{}),
		started: make(chan struct{}, 8),
	}
	close(f.release)
	p := NewCounterPage(CounterPageConfig{
		Fetcher:  f,
		Interval: 20 * time.Millisecond,
		Timeout:  time.Minute,
	})

	p.Update(loadCount(t, p))
	f.count = 8

	// With nothing in flight a tick issues a fresh request.
	p.Update(TickMsg(time.Now()))
	if !p.seq.InFlight() {
		t.Fatal("tick did not start a request")
	}
	p.Update(loadCount(t, p))

	if got := p.State(); got != (counter.State{Current: 8, Previous: 7}) {
		t.Fatalf("state = %+v, want {8 7}", got)
	}
}
