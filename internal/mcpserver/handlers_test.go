package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/storelaunch/internal/activity"
	"github.com/mark3labs/storelaunch/internal/deploy"
	"github.com/mark3labs/storelaunch/internal/wizard"
)

// setupTestServer wires a server to a controller deploying against an
// httptest endpoint that always accepts.
func setupTestServer(t *testing.T, store *activity.Store) *Server {
	t.Helper()
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(endpoint.Close)

	opts := deploy.Options{
		TickInterval: time.Millisecond,
		GraceDelay:   time.Millisecond,
		Increment:    func() float64 { return 50 },
	}
	if store != nil {
		opts.Sink = store.Recorder()
	}
	tr := deploy.NewTracker(deploy.NewHTTPClient(endpoint.URL, 5*time.Second), opts)
	t.Cleanup(tr.Close)

	ctrl := wizard.New(tr)
	t.Cleanup(ctrl.Close)
	return New(ctrl, store)
}

func call(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

// extractText extracts text from CallToolResult.Content[0]
func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}

func decodeState(t *testing.T, result *mcp.CallToolResult) stateView {
	t.Helper()
	require.False(t, result.IsError, extractText(result))
	var v stateView
	require.NoError(t, json.Unmarshal([]byte(extractText(result)), &v))
	return v
}

func setField(t *testing.T, srv *Server, path string, value any) stateView {
	t.Helper()
	res, err := srv.handleSetField(context.Background(), call(map[string]any{"path": path, "value": value}))
	require.NoError(t, err)
	return decodeState(t, res)
}

func next(t *testing.T, srv *Server) *mcp.CallToolResult {
	t.Helper()
	res, err := srv.handleNext(context.Background(), call(nil))
	require.NoError(t, err)
	return res
}

func TestHandleState_Initial(t *testing.T) {
	srv := setupTestServer(t, nil)
	res, err := srv.handleState(context.Background(), call(nil))
	require.NoError(t, err)

	v := decodeState(t, res)
	require.Equal(t, 1, v.Step)
	require.Equal(t, "Select Package", v.Title)
	require.False(t, v.CanAdvance)
	require.Equal(t, "idle", v.Deployment.Phase)
	require.NotEmpty(t, v.Issues)
}

func TestHandlePackages(t *testing.T) {
	srv := setupTestServer(t, nil)
	res, err := srv.handlePackages(context.Background(), call(nil))
	require.NoError(t, err)

	text := extractText(res)
	require.Contains(t, text, `"professional"`)
	require.Contains(t, text, `"publishableKey"`)
}

func TestHandleSetField_Errors(t *testing.T) {
	srv := setupTestServer(t, nil)

	res, err := srv.handleSetField(context.Background(), call(nil))
	require.NoError(t, err)
	require.True(t, res.IsError)

	res, err = srv.handleSetField(context.Background(), call(map[string]any{"path": "nickname", "value": "x"}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, extractText(res), "unknown field path")
}

func TestHandleNext_Blocked(t *testing.T) {
	srv := setupTestServer(t, nil)
	setField(t, srv, "package", "basic")
	require.False(t, next(t, srv).IsError)

	text := extractText(next(t, srv))
	require.Contains(t, text, "Cannot advance from step 2 (Store Details).")
	require.Contains(t, text, "storeName: required")
}

func TestHandleSetField_MasksSecrets(t *testing.T) {
	srv := setupTestServer(t, nil)
	setField(t, srv, "services.stripe", true)
	setField(t, srv, "serviceCredentials.stripe.secretKey", "sk_live_abc")
	setField(t, srv, "adminCredentials.adminPassword", "hunter2")
	v := setField(t, srv, "paymentCredentials.cardNumber", "4242 4242 4242 4242")

	require.True(t, v.Form.Services.Stripe)
	require.Equal(t, mask, v.Form.ServiceCredentials.Stripe.Secret)
	require.Equal(t, mask, v.Form.AdminCredentials.AdminPassword)
	require.Equal(t, "************4242", v.Form.PaymentCredentials.CardNumber)

	// The controller itself keeps the real values.
	require.Equal(t, "sk_live_abc", srv.ctrl.Form().ServiceCredentials.Stripe.Secret)
}

func TestWizardOverMCP_DeploysAndRestarts(t *testing.T) {
	store, err := activity.Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	srv := setupTestServer(t, store)

	for _, f := range []struct{ path, value string }{
		{"package", "professional"},
		{"storeName", "Acme"},
		{"ownerName", "Ada"},
		{"ownerEmail", "ada@acme.test"},
		{"ownerPhone", "555"},
		{"subdomain", "acme"},
		{"services.google", "true"},
		{"serviceCredentials.google.clientId", "gid"},
		{"serviceCredentials.google.clientSecret", "gsecret"},
		{"adminCredentials.adminEmail", "admin@acme.test"},
		{"adminCredentials.adminPassword", "pw"},
		{"adminCredentials.confirmPassword", "pw"},
		{"paymentCredentials.cardNumber", wizard.SentinelCard},
		{"paymentCredentials.expiry", wizard.SentinelExpiry},
		{"paymentCredentials.cvv", wizard.SentinelCVV},
	} {
		setField(t, srv, f.path, f.value)
	}

	res, err := srv.handleRestart(context.Background(), call(nil))
	require.NoError(t, err)
	require.True(t, res.IsError, "restart refused before activation")

	for step := 1; step <= 7; step++ {
		v := decodeState(t, next(t, srv))
		// The last hop may already have completed by the time it is rendered.
		require.GreaterOrEqual(t, v.Step, step+1)
	}

	require.Eventually(t, func() bool {
		return srv.ctrl.Step() == wizard.StepActivation
	}, 5*time.Second, 5*time.Millisecond)

	res, err = srv.handleState(context.Background(), call(nil))
	require.NoError(t, err)
	v := decodeState(t, res)
	require.Equal(t, "completed", v.Deployment.Phase)
	require.NotNil(t, v.LastResult)
	require.Equal(t, "https://acme.bajgo.com/admin", v.LastResult.URLs.Admin)

	require.True(t, strings.HasPrefix(extractText(next(t, srv)), "Step 9 (Activation) has no next step."))

	require.Eventually(t, func() bool {
		res, err := srv.handleActivity(context.Background(), call(nil))
		return err == nil && strings.Contains(extractText(res), `"status": "completed"`)
	}, 5*time.Second, 10*time.Millisecond)

	res, err = srv.handleRestart(context.Background(), call(nil))
	require.NoError(t, err)
	v = decodeState(t, res)
	require.Equal(t, 1, v.Step)
	require.Empty(t, v.Form.StoreName)
	require.Nil(t, v.LastResult)
}

func TestHandleActivity_Disabled(t *testing.T) {
	srv := setupTestServer(t, nil)
	res, err := srv.handleActivity(context.Background(), call(nil))
	require.NoError(t, err)
	require.Equal(t, "The activity log is disabled.", extractText(res))
}

func TestStartStop(t *testing.T) {
	srv := setupTestServer(t, nil)
	port, err := srv.Start(context.Background(), 0)
	require.NoError(t, err)
	require.NotZero(t, port)
	require.Contains(t, srv.URL(), "/mcp")

	_, err = srv.Start(context.Background(), 0)
	require.Error(t, err)

	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Stop())
}
