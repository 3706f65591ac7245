package wizard

import (
	"context"
	"errors"
	"sync"

	"github.com/mark3labs/storelaunch/internal/deploy"
	"github.com/mark3labs/storelaunch/internal/form"
	"github.com/mark3labs/storelaunch/internal/logger"
)

// ErrRestartNotAllowed is returned by Restart before activation.
var ErrRestartNotAllowed = errors.New("restart is only available after activation")

// View is a consistent copy of everything a presentation surface renders.
type View struct {
	Step       Step
	Form       *form.State
	CanAdvance bool
	Issues     []Issue
	Deployment deploy.Snapshot
	LastResult *deploy.Result
	LastError  string
}

// Loading reports whether a deployment attempt is in flight.
func (v View) Loading() bool { return v.Deployment.Loading }

// Controller owns the form and the current step, and starts deployments
// through a Tracker. All methods are safe for concurrent use.
type Controller struct {
	tracker *deploy.Tracker
	detach  func()

	mu         sync.Mutex
	step       Step
	form       *form.State
	attempt    uint64
	lastResult *deploy.Result
	lastError  string
	subs       map[int]func(View)
	nextSub    int

	notifyMu sync.Mutex
}

// Option configures a Controller.
type Option func(*Controller)

// WithForm starts the wizard from a pre-filled form instead of an empty one.
func WithForm(st *form.State) Option {
	return func(c *Controller) {
		if st != nil {
			c.form = st.Clone()
		}
	}
}

// New returns a controller at step 1 that deploys through tracker.
func New(tracker *deploy.Tracker, opts ...Option) *Controller {
	c := &Controller{
		tracker: tracker,
		step:    StepPackage,
		form:    form.New(),
		subs:    make(map[int]func(View)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.detach = tracker.Subscribe(c.onDeployment)
	return c
}

// Close stops observing the tracker.
func (c *Controller) Close() {
	if c.detach != nil {
		c.detach()
	}
}

// Subscribe registers fn to receive a fresh View after every change,
// including each deployment tick. Deliveries are serialized; fn may read the
// controller but must not mutate it. The returned func unregisters fn.
func (c *Controller) Subscribe(fn func(View)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Next advances past the current step if its gate passes. At the payment
// step it starts a deployment and moves to the deploying step once the
// attempt is requesting. It reports whether anything changed.
func (c *Controller) Next(ctx context.Context) bool {
	c.mu.Lock()
	changed := c.nextLocked(ctx)
	c.mu.Unlock()

	if changed {
		c.publish()
	}
	return changed
}

func (c *Controller) nextLocked(ctx context.Context) bool {
	if c.step > LastInputStep {
		return false
	}
	if !CanAdvance(c.step, c.form) {
		logger.Debug("next refused at step %d (%s)", c.step, c.step.Title())
		return false
	}
	if c.step != StepPayment {
		c.step++
		logger.Debug("advanced to step %d (%s)", c.step, c.step.Title())
		return true
	}

	if c.attempt != 0 && c.tracker.Snapshot().Loading {
		return false
	}
	c.lastError = ""
	c.lastResult = nil
	snap := c.tracker.Start(ctx, c.form.Clone())
	c.attempt = snap.Attempt
	if snap.Phase == deploy.PhaseRequesting {
		c.step = StepDeploying
	}
	return true
}

// Previous steps back one. It is a no-op at the first step, after
// activation, and while a deployment is in flight.
func (c *Controller) Previous() bool {
	c.mu.Lock()
	changed := c.previousLocked()
	c.mu.Unlock()

	if changed {
		c.publish()
	}
	return changed
}

func (c *Controller) previousLocked() bool {
	switch {
	case c.step <= StepPackage, c.step >= StepActivation:
		return false
	case c.step == StepDeploying && c.attempt != 0 && c.tracker.Snapshot().Loading:
		return false
	}
	c.step--
	return true
}

// Restart clears the form and the last deployment and returns to step 1.
func (c *Controller) Restart() error {
	c.mu.Lock()
	if c.step != StepActivation {
		c.mu.Unlock()
		return ErrRestartNotAllowed
	}
	c.form.Reset()
	c.step = StepPackage
	c.attempt = 0
	c.lastResult = nil
	c.lastError = ""
	c.mu.Unlock()

	logger.Info("wizard restarted")
	c.publish()
	return nil
}

// Apply writes u through to the form without validation.
func (c *Controller) Apply(u form.Update) {
	c.mu.Lock()
	c.form.Apply(u)
	c.mu.Unlock()

	c.publish()
}

// CloseDialog dismisses the deployment dialog of the current attempt.
func (c *Controller) CloseDialog() {
	c.mu.Lock()
	current := c.attempt != 0
	c.mu.Unlock()
	if !current {
		return
	}
	c.tracker.CloseDialog()
	c.publish()
}

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Form returns a copy of the form.
func (c *Controller) Form() *form.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Clone()
}

func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CanAdvance(c.step, c.form)
}

func (c *Controller) Issues() []Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Issues(c.step, c.form)
}

func (c *Controller) IsLoading() bool {
	return c.Deployment().Loading
}

// Deployment returns the tracker state of the current attempt, or a zero
// snapshot when none has started since the last restart.
func (c *Controller) Deployment() deploy.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deploymentLocked()
}

func (c *Controller) deploymentLocked() deploy.Snapshot {
	if c.attempt == 0 {
		return deploy.Snapshot{}
	}
	return c.tracker.Snapshot()
}

// LastResult returns the result of the last completed deployment, if any.
func (c *Controller) LastResult() *deploy.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyResult(c.lastResult)
}

// LastError returns the message of the last failed deployment.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// View returns a snapshot of the whole wizard.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	return View{
		Step:       c.step,
		Form:       c.form.Clone(),
		CanAdvance: CanAdvance(c.step, c.form),
		Issues:     Issues(c.step, c.form),
		Deployment: c.deploymentLocked(),
		LastResult: copyResult(c.lastResult),
		LastError:  c.lastError,
	}
}

func (c *Controller) onDeployment(s deploy.Snapshot) {
	c.mu.Lock()
	if c.attempt == 0 || s.Attempt != c.attempt {
		c.mu.Unlock()
		return
	}
	switch s.Phase {
	case deploy.PhaseCompleted:
		if s.Result != nil && c.step == StepDeploying {
			c.lastResult = copyResult(s.Result)
			c.step = StepActivation
			logger.Info("store %s activated", s.Result.URLs.Storefront)
		}
	case deploy.PhaseFailed:
		c.lastError = s.Err
	}
	c.mu.Unlock()

	c.publish()
}

func (c *Controller) publish() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	v := c.viewLocked()
	subs := make([]func(View), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

func copyResult(r *deploy.Result) *deploy.Result {
	if r == nil {
		return nil
	}
	out := *r
	return &out
}
