package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/storelaunch/internal/form"
)

func testForm() *form.State {
	s := form.New()
	s.Apply(form.SetPackage{ID: form.PackageProfessional})
	s.Apply(form.SetStoreDetail{Field: form.StoreName, Value: "Acme"})
	s.Apply(form.SetStoreDetail{Field: form.OwnerName, Value: "Ada"})
	s.Apply(form.SetStoreDetail{Field: form.OwnerEmail, Value: "ada@acme.test"})
	s.Apply(form.SetStoreDetail{Field: form.OwnerPhone, Value: "555"})
	s.Apply(form.SetSubdomain{Value: "acme"})
	s.Apply(form.SetService{Service: form.ServiceStripe, Enabled: true})
	s.Apply(form.SetCredential{Service: form.ServiceStripe, Part: form.CredentialID, Value: "pk"})
	s.Apply(form.SetCredential{Service: form.ServiceStripe, Part: form.CredentialSecret, Value: "sk"})
	// Entered, then disabled: must not be sent.
	s.Apply(form.SetService{Service: form.ServiceGoogle, Enabled: true})
	s.Apply(form.SetCredential{Service: form.ServiceGoogle, Part: form.CredentialID, Value: "gid"})
	s.Apply(form.SetService{Service: form.ServiceGoogle, Enabled: false})
	s.Apply(form.SetAdmin{Field: form.AdminEmail, Value: "admin@acme.test"})
	s.Apply(form.SetAdmin{Field: form.AdminPassword, Value: "hunter2"})
	s.Apply(form.SetAdmin{Field: form.ConfirmPassword, Value: "hunter2"})
	return s
}

func TestBuildRequest(t *testing.T) {
	req := BuildRequest(testForm())

	require.Equal(t, form.PackageProfessional, req.Package)
	require.Equal(t, "acme", req.Subdomain)
	require.Equal(t, map[form.Service]map[string]string{
		form.ServiceStripe: {"publishableKey": "pk", "secretKey": "sk"},
	}, req.ServiceCredentials)
	require.Equal(t, AdminPayload{
		Email:           "admin@acme.test",
		Password:        "hunter2",
		ConfirmPassword: "hunter2",
	}, req.AdminCredentials)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.NotContains(t, raw, "paymentCredentials")
	require.Equal(t, false, raw["services"].(map[string]any)["google"])
}

func TestBuildRequest_NoServices(t *testing.T) {
	s := testForm()
	s.Apply(form.SetService{Service: form.ServiceStripe, Enabled: false})

	data, err := json.Marshal(BuildRequest(s))
	require.NoError(t, err)
	require.Contains(t, string(data), `"serviceCredentials":{}`)
}

func TestHTTPClient_Success(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ignored":true}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	require.NoError(t, c.Provision(context.Background(), BuildRequest(testForm())))
	require.Equal(t, "acme", got.Subdomain)
	require.Equal(t, "hunter2", got.AdminCredentials.ConfirmPassword)
}

func TestHTTPClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json message", http.StatusInternalServerError, `{"message":"capacity exceeded"}`, "capacity exceeded"},
		{"no body", http.StatusBadGateway, ``, "HTTP error! status: 502"},
		{"not json", http.StatusBadRequest, `<html>nope</html>`, "HTTP error! status: 400"},
		{"empty message", http.StatusConflict, `{"message":""}`, "HTTP error! status: 409"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewHTTPClient(srv.URL, 5*time.Second).Provision(context.Background(), BuildRequest(testForm()))
			require.Error(t, err)
			require.ErrorIs(t, err, ErrServerRejection)
			require.Equal(t, tt.wantMsg, err.Error())

			var se *ServerError
			require.ErrorAs(t, err, &se)
			require.Equal(t, tt.status, se.StatusCode)
		})
	}
}

func TestHTTPClient_Transport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPClient(url, time.Second).Provision(context.Background(), BuildRequest(testForm()))
	require.ErrorIs(t, err, ErrTransport)
	require.NotErrorIs(t, err, ErrServerRejection)
}

func TestStoreURLsAndClientID(t *testing.T) {
	u := StoreURLs("acme", "bajgo.com")
	require.Equal(t, "https://acme.bajgo.com", u.Storefront)
	require.Equal(t, "https://acme.bajgo.com/admin", u.Admin)
	require.Equal(t, "https://api.acme.bajgo.com", u.API)

	for range 50 {
		require.Regexp(t, `^store_[a-z0-9]{9}$`, NewClientID())
	}
	for range 50 {
		inc := RandomIncrement()
		require.GreaterOrEqual(t, inc, 0.1)
		require.Less(t, inc, 0.6)
	}
}

// stubProvisioner blocks until release is closed, then returns err.
type stubProvisioner struct {
	release chan struct{}
	err     error
}

func newStub(err error) *stubProvisioner {
	return &stubProvisioner{release: make(chan struct{}), err: err}
}

func (s *stubProvisioner) Provision(ctx context.Context, req Request) error {
	<-s.release
	return s.err
}

// recorder collects events and snapshots.
type recorder struct {
	mu     sync.Mutex
	events []Event
	snaps  []Snapshot
}

func (r *recorder) Record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) observe(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func newMockTracker(p Provisioner, rec *recorder) (*Tracker, *clock.Mock) {
	mock := clock.NewMock()
	tr := NewTracker(p, Options{
		Clock:     mock,
		Increment: func() float64 { return 0.5 },
		ClientID:  func() string { return "store_abc123xyz" },
		Countdown: 600,
		Sink:      rec,
	})
	return tr, mock
}

func TestTracker_StartOpensDialog(t *testing.T) {
	stub := newStub(nil)
	defer close(stub.release)
	tr, _ := newMockTracker(stub, &recorder{})

	snap := tr.Start(context.Background(), testForm())
	require.Equal(t, uint64(1), snap.Attempt)
	require.Equal(t, PhaseRequesting, snap.Phase)
	require.True(t, snap.DialogOpen)
	require.True(t, snap.Loading)
	require.Zero(t, snap.Progress)
	require.Equal(t, 600, snap.TimeRemaining)
	require.Equal(t, "acme", snap.Subdomain)
}

func TestTracker_ProgressClampedAndMonotonic(t *testing.T) {
	stub := newStub(nil)
	defer close(stub.release)
	tr, _ := newMockTracker(stub, &recorder{})
	snap := tr.Start(context.Background(), testForm())

	prev := 0.0
	for range 250 {
		tr.tickProgress(snap.Attempt)
		cur := tr.Snapshot().Progress
		require.GreaterOrEqual(t, cur, prev)
		require.LessOrEqual(t, cur, 100.0)
		prev = cur
	}
	require.Equal(t, 100.0, prev)

	// Request still outstanding: no completion without a 2xx.
	require.Equal(t, PhaseRequesting, tr.Snapshot().Phase)
	require.Nil(t, tr.Snapshot().Result)
}

func TestTracker_CountdownFloorsAtZero(t *testing.T) {
	stub := newStub(nil)
	defer close(stub.release)
	mock := clock.NewMock()
	tr := NewTracker(stub, Options{Clock: mock, Countdown: 3})
	snap := tr.Start(context.Background(), testForm())

	for range 5 {
		tr.tickCountdown(snap.Attempt)
	}
	require.Equal(t, 0, tr.Snapshot().TimeRemaining)
}

func TestTracker_CompletesOnce(t *testing.T) {
	stub := newStub(nil)
	rec := &recorder{}
	tr, mock := newMockTracker(stub, rec)
	tr.Subscribe(rec.observe)

	snap := tr.Start(context.Background(), testForm())
	close(stub.release)
	require.Eventually(t, func() bool {
		return tr.Snapshot().Phase == PhaseSimulating
	}, 2*time.Second, 5*time.Millisecond)

	for range 200 {
		tr.tickProgress(snap.Attempt)
	}
	require.Equal(t, 100.0, tr.Snapshot().Progress)

	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		return tr.Snapshot().Phase == PhaseCompleted
	}, 2*time.Second, 5*time.Millisecond)

	final := tr.Snapshot()
	require.False(t, final.DialogOpen)
	require.False(t, final.Loading)
	require.NotNil(t, final.Result)
	require.Equal(t, "store_abc123xyz", final.Result.ClientID)
	require.Equal(t, "https://acme.bajgo.com", final.Result.URLs.Storefront)

	// A second grace expiry for the same attempt is a no-op.
	tr.complete(snap.Attempt)
	mock.Add(5 * time.Second)
	require.Equal(t, 1, rec.count(EventCompleted))
	require.Equal(t, 1, rec.count(EventAccepted))
}

func TestTracker_AcceptAfterFullBarStillCompletes(t *testing.T) {
	stub := newStub(nil)
	tr, mock := newMockTracker(stub, &recorder{})
	snap := tr.Start(context.Background(), testForm())

	for range 200 {
		tr.tickProgress(snap.Attempt)
	}
	close(stub.release)

	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		return tr.Snapshot().Phase == PhaseCompleted
	}, 2*time.Second, 5*time.Millisecond)
}

func TestTracker_Failure(t *testing.T) {
	stub := newStub(&ServerError{StatusCode: 500, Message: "capacity exceeded"})
	rec := &recorder{}
	tr, _ := newMockTracker(stub, rec)
	snap := tr.Start(context.Background(), testForm())
	tr.tickProgress(snap.Attempt)
	close(stub.release)

	require.Eventually(t, func() bool {
		return tr.Snapshot().Phase == PhaseFailed
	}, 2*time.Second, 5*time.Millisecond)

	final := tr.Snapshot()
	require.Equal(t, "capacity exceeded", final.Err)
	require.False(t, final.DialogOpen)
	require.False(t, final.Loading)
	require.Nil(t, final.Result)
	require.Equal(t, 0.5, final.Progress, "progress is not rolled back")
	require.Equal(t, 1, rec.count(EventFailed))

	// Timers are dead.
	require.True(t, tr.tickProgress(snap.Attempt))
	require.Equal(t, 0.5, tr.Snapshot().Progress)
}

func TestTracker_CloseDialogCancels(t *testing.T) {
	stub := newStub(nil)
	rec := &recorder{}
	tr, mock := newMockTracker(stub, rec)
	snap := tr.Start(context.Background(), testForm())

	for range 10 {
		tr.tickProgress(snap.Attempt)
	}
	tr.CloseDialog()
	tr.CloseDialog()

	closed := tr.Snapshot()
	require.False(t, closed.DialogOpen)
	require.False(t, closed.Loading)
	require.Equal(t, 5.0, closed.Progress)
	require.Equal(t, 1, rec.count(EventCancelled))

	// Request succeeds afterwards; the bar never fills so no result appears.
	close(stub.release)
	require.Eventually(t, func() bool {
		return tr.Snapshot().Phase == PhaseSimulating
	}, 2*time.Second, 5*time.Millisecond)
	require.True(t, tr.tickProgress(snap.Attempt))
	mock.Add(10 * time.Second)
	require.Nil(t, tr.Snapshot().Result)
	require.Equal(t, 5.0, tr.Snapshot().Progress)
}

func TestTracker_SupersededAttemptIgnored(t *testing.T) {
	staleRelease := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	var staleDone atomic.Bool
	p := ProvisionerFunc(func(ctx context.Context, req Request) error {
		if req.Subdomain == "old" {
			<-staleRelease
			defer staleDone.Store(true)
			return errors.New("stale failure")
		}
		<-release
		return nil
	})
	tr, _ := newMockTracker(p, &recorder{})

	oldForm := testForm()
	oldForm.Apply(form.SetSubdomain{Value: "old"})
	old := tr.Start(context.Background(), oldForm)
	cur := tr.Start(context.Background(), testForm())
	require.Equal(t, old.Attempt+1, cur.Attempt)

	close(staleRelease)
	require.Eventually(t, staleDone.Load, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	snap := tr.Snapshot()
	require.Equal(t, cur.Attempt, snap.Attempt)
	require.Equal(t, "acme", snap.Subdomain)
	require.Equal(t, PhaseRequesting, snap.Phase)
	require.Empty(t, snap.Err)

	// Stale ticks do nothing either.
	require.True(t, tr.tickProgress(old.Attempt))
	require.Zero(t, tr.Snapshot().Progress)
}

func TestTracker_RealClock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rec := &recorder{}
	tr := NewTracker(NewHTTPClient(srv.URL, 5*time.Second), Options{
		TickInterval: time.Millisecond,
		GraceDelay:   5 * time.Millisecond,
		Increment:    func() float64 { return 10 },
		Sink:         rec,
	})
	defer tr.Close()
	tr.Subscribe(rec.observe)

	tr.Start(context.Background(), testForm())
	require.Eventually(t, func() bool {
		return tr.Snapshot().Phase == PhaseCompleted
	}, 5*time.Second, 5*time.Millisecond)

	require.Regexp(t, `^store_[a-z0-9]{9}$`, tr.Snapshot().Result.ClientID)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	prev := 0.0
	for _, s := range rec.snaps {
		require.GreaterOrEqual(t, s.Progress, prev)
		prev = s.Progress
	}
}
