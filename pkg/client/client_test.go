package client

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dukex/docflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   []byte
	Header http.Header
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
}

func newFakeAPI(t *testing.T, handler http.HandlerFunc) (*fakeAPI, *Client) {
	t.Helper()

	api := &fakeAPI{handler: handler}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		api.mu.Lock()
		api.requests = append(api.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body, Header: r.Header.Clone()})
		api.mu.Unlock()

		api.handler(w, r)
	}))
	t.Cleanup(server.Close)

	c, err := New(server.URL+"/", WithHTTPClient(server.Client()))
	require.NoError(t, err)

	return api, c
}

func (a *fakeAPI) last(t *testing.T) recordedRequest {
	t.Helper()

	a.mu.Lock()
	defer a.mu.Unlock()

	require.NotEmpty(t, a.requests)

	return a.requests[len(a.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func sampleFlow() models.Flow {
	return models.Flow{
		ID:   "client-id",
		Name: "Daily Digest",
		Nodes: []models.Node{
			{ID: "n1", Type: models.NodeTypePromptLLM, Config: "Summarize"},
		},
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrBaseURLRequired)

	_, err = New("ftp://example.com")
	assert.Error(t, err)
}

func TestClient_List(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []models.Flow{sampleFlow()})
	})

	flows, err := c.List(t.Context())
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, "Daily Digest", flows[0].Name)

	req := api.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/flows", req.Path)
}

func TestClient_ListNullIsEmpty(t *testing.T) {
	_, c := newFakeAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, nil)
	})

	flows, err := c.List(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, flows)
	assert.Empty(t, flows)
}

func TestClient_ListFailure(t *testing.T) {
	_, c := newFakeAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "database unavailable"})
	})

	flows, err := c.List(t.Context())
	require.Error(t, err)
	assert.Nil(t, flows)
	assert.ErrorIs(t, err, ErrFetch)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
	assert.Equal(t, "database unavailable", fetchErr.Detail)
	assert.Equal(t, "failed to list flows: 500 - database unavailable", err.Error())
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	_, err = c.List(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.StatusCode)
	assert.Error(t, fetchErr.Err)
}

func TestClient_CreateReturnsServerCopy(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		var flow models.Flow

		_ = json.NewDecoder(r.Body).Decode(&flow)
		flow.ID = "server-id"
		writeJSON(w, http.StatusOK, flow)
	})

	created, err := c.Create(t.Context(), sampleFlow())
	require.NoError(t, err)
	assert.Equal(t, "server-id", created.ID)

	req := api.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/flows", req.Path)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"id":"client-id","name":"Daily Digest","nodes":[{"id":"n1","type":3,"config":"Summarize"}]}`, string(req.Body))
}

func TestClient_Update(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json, ignored"))
	})

	err := c.Update(t.Context(), "client-id", sampleFlow())
	require.NoError(t, err)

	req := api.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/flows/client-id", req.Path)
}

func TestClient_DeleteNotFound(t *testing.T) {
	_, c := newFakeAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Flow not found."})
	})

	err := c.Delete(t.Context(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Flow not found.")
}

func TestClient_Delete(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Delete(t.Context(), "client-id"))

	req := api.last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/flows/client-id", req.Path)
}

func TestClient_Execute(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Flow executed successfully.", "result": map[string]string{"n1": "summary"}})
	})

	result, err := c.Execute(t.Context(), "client-id")
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Flow executed successfully.","result":{"n1":"summary"}}`, string(result))

	req := api.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/flows/client-id/execute", req.Path)
}

func TestClient_ExecuteProblemDetail(t *testing.T) {
	_, c := newFakeAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"type": "execution_failed", "title": "Internal Server Error", "detail": "Failed to execute flow."})
	})

	_, err := c.Execute(t.Context(), "client-id")
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "execute", fetchErr.Op)
	assert.Equal(t, "Failed to execute flow.", fetchErr.Detail)
}

func TestClient_Get(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, sampleFlow())
	})

	flow, err := c.Get(t.Context(), "client-id")
	require.NoError(t, err)
	assert.Equal(t, "client-id", flow.ID)
	assert.Equal(t, "/flows/client-id", api.last(t).Path)
}
