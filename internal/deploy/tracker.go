package deploy

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/mark3labs/storelaunch/internal/form"
	"github.com/mark3labs/storelaunch/internal/logger"
)

// Phase is the lifecycle stage of a deployment attempt.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRequesting
	PhaseSimulating
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequesting:
		return "requesting"
	case PhaseSimulating:
		return "simulating"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time copy of the tracker state.
type Snapshot struct {
	Attempt       uint64
	Subdomain     string
	Phase         Phase
	Progress      float64
	TimeRemaining int
	Result        *Result
	Err           string
	DialogOpen    bool
	Loading       bool
}

func (s Snapshot) clone() Snapshot {
	if s.Result != nil {
		r := *s.Result
		s.Result = &r
	}
	return s
}

// Options tune the tracker. Zero values take the defaults below.
type Options struct {
	Domain       string
	TickInterval time.Duration
	GraceDelay   time.Duration
	Countdown    int

	Clock     clock.Clock
	Increment func() float64
	ClientID  func() string
	Sink      EventSink
}

const (
	defaultDomain       = "bajgo.com"
	defaultTickInterval = time.Second
	defaultGraceDelay   = 2 * time.Second
	defaultCountdown    = 600
)

func (o Options) withDefaults() Options {
	if o.Domain == "" {
		o.Domain = defaultDomain
	}
	if o.TickInterval <= 0 {
		o.TickInterval = defaultTickInterval
	}
	if o.GraceDelay < 0 {
		o.GraceDelay = 0
	} else if o.GraceDelay == 0 {
		o.GraceDelay = defaultGraceDelay
	}
	if o.Countdown <= 0 {
		o.Countdown = defaultCountdown
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Increment == nil {
		o.Increment = RandomIncrement
	}
	if o.ClientID == nil {
		o.ClientID = NewClientID
	}
	return o
}

// Tracker drives one deployment attempt at a time: the provisioning
// request, the simulated progress bar and the countdown. Starting a new
// attempt supersedes the previous one; late callbacks from a superseded
// attempt are dropped.
//
// Start and CloseDialog never notify observers; only the tracker's own
// goroutines do. Callers holding their own locks may therefore call them.
type Tracker struct {
	provisioner Provisioner
	opts        Options

	mu        sync.Mutex
	snap      Snapshot
	timers    context.Context
	cancel    context.CancelFunc
	armed     bool
	observers map[int]func(Snapshot)
	nextObs   int

	// notifyMu serializes observer delivery so observers see snapshots in
	// order.
	notifyMu sync.Mutex
}

// NewTracker returns an idle tracker.
func NewTracker(p Provisioner, opts Options) *Tracker {
	return &Tracker{
		provisioner: p,
		opts:        opts.withDefaults(),
		observers:   make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap.clone()
}

// Subscribe registers fn for every state change made by the tracker's
// goroutines. The returned func unregisters it.
func (t *Tracker) Subscribe(fn func(Snapshot)) func() {
	t.mu.Lock()
	id := t.nextObs
	t.nextObs++
	t.observers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.observers, id)
		t.mu.Unlock()
	}
}

// Start begins a new attempt for st: it opens the dialog, starts the
// progress and countdown timers, and issues the provisioning request in the
// background. The request is detached from ctx cancellation; closing the
// dialog only stops the timers.
func (t *Tracker) Start(ctx context.Context, st *form.State) Snapshot {
	req := BuildRequest(st)

	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	timers, cancel := context.WithCancel(context.Background())
	t.timers, t.cancel = timers, cancel
	t.armed = false
	t.snap = Snapshot{
		Attempt:       t.snap.Attempt + 1,
		Subdomain:     st.Subdomain,
		Phase:         PhaseRequesting,
		TimeRemaining: t.opts.Countdown,
		DialogOpen:    true,
		Loading:       true,
	}
	attempt := t.snap.Attempt
	snap := t.snap.clone()
	t.mu.Unlock()

	logger.Info("deployment attempt %d started for %q", attempt, st.Subdomain)
	t.emit(EventStarted, snap)

	go t.runProgress(timers, attempt)
	go t.runCountdown(timers, attempt)
	go t.request(context.WithoutCancel(ctx), attempt, req)

	return snap
}

// CloseDialog dismisses the dialog of the current attempt. Both timers stop
// and progress is kept as is; no result is produced. An in-flight request
// still runs to completion.
func (t *Tracker) CloseDialog() {
	t.mu.Lock()
	if !t.snap.DialogOpen {
		t.mu.Unlock()
		return
	}
	t.closeLocked()
	snap := t.snap.clone()
	t.mu.Unlock()

	logger.Info("deployment attempt %d dialog closed at %.1f%%", snap.Attempt, snap.Progress)
	t.emit(EventCancelled, snap)
}

// Close stops any running timers. The tracker stays usable.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
}

func (t *Tracker) closeLocked() {
	t.snap.DialogOpen = false
	t.snap.Loading = false
	if t.cancel != nil {
		t.cancel()
	}
}

func (t *Tracker) request(ctx context.Context, attempt uint64, req Request) {
	err := t.provisioner.Provision(ctx, req)

	t.mu.Lock()
	if t.snap.Attempt != attempt || t.snap.Phase != PhaseRequesting {
		t.mu.Unlock()
		logger.Debug("dropping provisioning response for superseded attempt %d", attempt)
		return
	}
	if err != nil {
		t.snap.Phase = PhaseFailed
		t.snap.Err = err.Error()
		t.closeLocked()
		snap := t.snap.clone()
		t.mu.Unlock()

		logger.Error("deployment attempt %d failed: %v", attempt, err)
		t.emit(EventFailed, snap)
		t.publish()
		return
	}

	t.snap.Phase = PhaseSimulating
	timers, arm := t.armLocked()
	snap := t.snap.clone()
	t.mu.Unlock()

	logger.Info("deployment attempt %d accepted", attempt)
	t.emit(EventAccepted, snap)
	t.publish()
	if arm {
		go t.awaitCompletion(timers, attempt)
	}
}

func (t *Tracker) runProgress(ctx context.Context, attempt uint64) {
	ticker := t.opts.Clock.Ticker(t.opts.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := t.tickProgress(attempt); done {
				return
			}
		}
	}
}

func (t *Tracker) runCountdown(ctx context.Context, attempt uint64) {
	ticker := t.opts.Clock.Ticker(t.opts.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := t.tickCountdown(attempt); done {
				return
			}
		}
	}
}

// tickProgress advances the bar by one increment, clamped at 100. It reports
// whether the progress timer should stop.
func (t *Tracker) tickProgress(attempt uint64) bool {
	t.mu.Lock()
	if t.snap.Attempt != attempt || !t.snap.DialogOpen || t.snap.Progress >= 100 {
		t.mu.Unlock()
		return true
	}
	t.snap.Progress += t.opts.Increment()
	if t.snap.Progress > 100 {
		t.snap.Progress = 100
	}
	timers, arm := t.armLocked()
	snap := t.snap.clone()
	t.mu.Unlock()

	t.emit(EventProgress, snap)
	t.publish()
	if arm {
		go t.awaitCompletion(timers, attempt)
	}
	return snap.Progress >= 100
}

// tickCountdown decrements the remaining seconds, floored at 0.
func (t *Tracker) tickCountdown(attempt uint64) bool {
	t.mu.Lock()
	if t.snap.Attempt != attempt || !t.snap.DialogOpen {
		t.mu.Unlock()
		return true
	}
	if t.snap.TimeRemaining > 0 {
		t.snap.TimeRemaining--
	}
	done := t.snap.TimeRemaining == 0
	t.mu.Unlock()

	t.publish()
	return done
}

// armLocked reports whether the completion wait should start now. It fires
// at most once per attempt, when the request has succeeded and the bar has
// reached 100 with the dialog open.
func (t *Tracker) armLocked() (context.Context, bool) {
	if t.armed || t.snap.Phase != PhaseSimulating || !t.snap.DialogOpen || t.snap.Progress < 100 {
		return nil, false
	}
	t.armed = true
	return t.timers, true
}

func (t *Tracker) awaitCompletion(ctx context.Context, attempt uint64) {
	timer := t.opts.Clock.Timer(t.opts.GraceDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		t.complete(attempt)
	}
}

func (t *Tracker) complete(attempt uint64) {
	t.mu.Lock()
	if t.snap.Attempt != attempt || t.snap.Phase != PhaseSimulating || !t.snap.DialogOpen {
		t.mu.Unlock()
		return
	}
	result := Synthesize(t.snap.Subdomain, t.opts.Domain, t.opts.ClientID())
	t.snap.Result = &result
	t.snap.Phase = PhaseCompleted
	t.closeLocked()
	snap := t.snap.clone()
	t.mu.Unlock()

	logger.Info("deployment attempt %d completed: %s", attempt, result.URLs.Storefront)
	t.emit(EventCompleted, snap)
	t.publish()
}

// publish delivers the current snapshot to every observer.
func (t *Tracker) publish() {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	snap := t.snap.clone()
	obs := make([]func(Snapshot), 0, len(t.observers))
	for _, fn := range t.observers {
		obs = append(obs, fn)
	}
	t.mu.Unlock()

	for _, fn := range obs {
		fn(snap)
	}
}

func (t *Tracker) emit(kind EventKind, snap Snapshot) {
	if t.opts.Sink == nil {
		return
	}
	t.opts.Sink.Record(Event{
		Attempt:       snap.Attempt,
		Kind:          kind,
		Subdomain:     snap.Subdomain,
		Progress:      snap.Progress,
		TimeRemaining: snap.TimeRemaining,
		Error:         snap.Err,
		Result:        snap.Result,
	})
}
