package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/choicefsm"
	"github.com/aretw0/choicefsm/pkg/adapters/memory"
	api "github.com/aretw0/choicefsm/pkg/adapters/http"
	"github.com/aretw0/choicefsm/pkg/domain"
	"github.com/aretw0/choicefsm/pkg/observability"
	"github.com/aretw0/choicefsm/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newServer serves a turnstile: locked -coin-> paid? -> unlocked, with a
// "jam" event whose choicepoint has no false branch.
func newServer(t *testing.T, opts ...api.Option) (*httptest.Server, *bool) {
	t.Helper()
	paid := true
	m := choicefsm.New[string, string, string]()
	require.NoError(t, m.AddState("locked"))
	require.NoError(t, m.AddState("unlocked"))
	require.NoError(t, m.AddChoicepoint("paid", func() bool { return paid }))
	require.NoError(t, m.AddTransitionToChoice("coin", "locked", "paid", nil))
	require.NoError(t, m.AddTransitionFromChoiceToState("paid", true, "unlocked", nil))
	require.NoError(t, m.AddTransition("push", "unlocked", "locked", nil))

	mgr := session.NewManager(m, memory.NewStore[string]())
	srv := httptest.NewServer(api.NewHandler(mgr, opts...))
	t.Cleanup(srv.Close)
	return srv, &paid
}

func do(t *testing.T, method, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeSession(t *testing.T, body []byte) api.SessionResponse {
	t.Helper()
	var out api.SessionResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestServer_SessionLifecycle(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/sessions/s1/events/coin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeSession(t, body)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "unlocked", got.State)
	require.NotNil(t, got.Handled)
	assert.True(t, *got.Handled)

	resp, body = do(t, http.MethodPost, srv.URL+"/sessions/s1/events/coin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decodeSession(t, body)
	assert.False(t, *got.Handled)
	assert.Equal(t, "unlocked", got.State)

	resp, body = do(t, http.MethodGet, srv.URL+"/sessions/s1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decodeSession(t, body)
	assert.Equal(t, []string{"locked", "unlocked"}, got.History)
	assert.Nil(t, got.Handled)

	resp, body = do(t, http.MethodGet, srv.URL+"/sessions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"sessions":["s1"]}`, string(body))

	resp, _ = do(t, http.MethodDelete, srv.URL+"/sessions/s1")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/sessions/s1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), domain.ErrSessionNotFound.Error())

	resp, body = do(t, http.MethodGet, srv.URL+"/sessions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"sessions":[]}`, string(body))
}

func TestServer_DispatchConflict(t *testing.T) {
	srv, paid := newServer(t)
	*paid = false

	resp, body := do(t, http.MethodPost, srv.URL+"/sessions/s1/events/coin")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var out api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Contains(t, out.Error, domain.ErrUnresolvedBranch.Error())

	resp, body = do(t, http.MethodGet, srv.URL+"/sessions/s1")
	require.Equal(t, http.StatusOK, resp.StatusCode, "the session was started before the failed step")
	assert.Equal(t, "locked", decodeSession(t, body).State)
}

func TestServer_RejectsBadEvent(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/sessions/s1/events/"+strings.Repeat("x", 300))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "maximum allowed size")

	resp, _ = do(t, http.MethodGet, srv.URL+"/sessions/s1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "a rejected event does not start the session")
}

func TestServer_Graph(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/graph")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "graph TD"))
	assert.Contains(t, string(body), "c_paid{\"paid\"}")
	assert.NotContains(t, string(body), "classDef")

	do(t, http.MethodPost, srv.URL+"/sessions/s1/events/coin")
	resp, body = do(t, http.MethodGet, srv.URL+"/graph?session=s1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "class s_unlocked current;")
	assert.Contains(t, string(body), "class s_locked visited;")

	resp, _ = do(t, http.MethodGet, srv.URL+"/graph?session=ghost")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/graph?format=json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var nodes []domain.Node
	require.NoError(t, json.Unmarshal(body, &nodes))
	require.Len(t, nodes, 3)
	assert.Equal(t, domain.KindChoicepoint, nodes[2].Kind)
}

func TestServer_Metrics(t *testing.T) {
	srv, _ := newServer(t)
	resp, _ := do(t, http.MethodGet, srv.URL+"/metrics")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "metrics are opt-in")

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	metrics.Transitions.WithLabelValues("locked", "unlocked").Inc()

	srv, _ = newServer(t, api.WithMetrics(reg))
	resp, body := do(t, http.MethodGet, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `choicefsm_transitions_total{from="locked",to="unlocked"} 1`)
}

func TestServer_CORSPreflight(t *testing.T) {
	srv, _ := newServer(t)
	resp, _ := do(t, http.MethodOptions, srv.URL+"/sessions")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

type failingStore struct {
	*memory.Store[string]
}

func (failingStore) List(context.Context) ([]string, error) {
	return nil, errors.New("disk on fire")
}

func TestServer_InternalError(t *testing.T) {
	m := choicefsm.New[string, string, string]()
	require.NoError(t, m.AddState("only"))
	mgr := session.NewManager(m, failingStore{memory.NewStore[string]()})
	srv := httptest.NewServer(api.NewHandler(mgr))
	defer srv.Close()

	resp, body := do(t, http.MethodGet, srv.URL+"/sessions")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "disk on fire")
}
