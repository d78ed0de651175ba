package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dukex/docflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory flows API.
type fakeAPI struct {
	mu      sync.Mutex
	flows   []models.Flow
	failRun bool
	listed  int
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /flows", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		f.listed++
		writeJSON(w, http.StatusOK, f.flows)
	})

	mux.HandleFunc("GET /flows/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		for _, flow := range f.flows {
			if flow.ID == r.PathValue("id") {
				writeJSON(w, http.StatusOK, flow)

				return
			}
		}

		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Flow not found."})
	})

	mux.HandleFunc("POST /flows", func(w http.ResponseWriter, r *http.Request) {
		var flow models.Flow
		if err := json.NewDecoder(r.Body).Decode(&flow); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})

			return
		}

		flow.State = models.FlowStateNotStarted

		f.mu.Lock()
		f.flows = append(f.flows, flow)
		f.mu.Unlock()

		writeJSON(w, http.StatusCreated, flow)
	})

	mux.HandleFunc("PUT /flows/{id}", func(w http.ResponseWriter, r *http.Request) {
		var flow models.Flow
		if err := json.NewDecoder(r.Body).Decode(&flow); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})

			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		for i := range f.flows {
			if f.flows[i].ID == r.PathValue("id") {
				f.flows[i].Name = flow.Name
				f.flows[i].Nodes = flow.Nodes
				writeJSON(w, http.StatusOK, f.flows[i])

				return
			}
		}

		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Flow not found."})
	})

	mux.HandleFunc("DELETE /flows/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		for i := range f.flows {
			if f.flows[i].ID == r.PathValue("id") {
				f.flows = append(f.flows[:i], f.flows[i+1:]...)
				w.WriteHeader(http.StatusNoContent)

				return
			}
		}

		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Flow not found."})
	})

	mux.HandleFunc("POST /flows/{id}/execute", func(w http.ResponseWriter, _ *http.Request) {
		if f.failRun {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Failed to execute flow."})

			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Flow executed successfully.",
			"result":  map[string]string{"n1": "hello"},
		})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) snapshot() []models.Flow {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]models.Flow(nil), f.flows...)
}

func runApp(t *testing.T, api *fakeAPI, stdin string, args ...string) (string, error) {
	t.Helper()

	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	var out bytes.Buffer

	app := newApp(strings.NewReader(stdin), &out)
	err := app.Run(context.Background(), append([]string{"flowctl", "--api-url", server.URL}, args...))

	return out.String(), err
}

func digestFlow() models.Flow {
	return models.Flow{
		ID:    "f1",
		Name:  "Daily Digest",
		State: models.FlowStateCompletedSuccessfully,
		Nodes: []models.Node{
			{ID: "n1", Type: models.NodeTypeReadFromGoogleDocs, Config: "notes"},
			{ID: "n2", Type: models.NodeTypePromptLLM, Config: "Summarize: {text}"},
		},
	}
}

func TestParseNodeSpec(t *testing.T) {
	nodeType, config, err := parseNodeArg("Prompt LLM=Summarize: {text}")
	require.NoError(t, err)
	assert.Equal(t, models.NodeTypePromptLLM, nodeType)
	assert.Equal(t, "Summarize: {text}", config)

	_, _, err = parseNodeArg("no separator")
	require.ErrorIs(t, err, errInvalidNode)

	_, _, err = parseNodeArg("Unsupported=x")
	require.ErrorIs(t, err, models.ErrUnknownNodeType)
}

func TestList(t *testing.T) {
	api := &fakeAPI{flows: []models.Flow{digestFlow(), {ID: "f2", Name: "Idle", Nodes: []models.Node{}}}}

	out, err := runApp(t, api, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily Digest")
	assert.Contains(t, out, "Completed Successfully")
	assert.Contains(t, out, "Not Started")

	out, err = runApp(t, api, "", "list", "--state", "Not Started")
	require.NoError(t, err)
	assert.NotContains(t, out, "Daily Digest")
	assert.Contains(t, out, "f2")
}

func TestCreate(t *testing.T) {
	api := &fakeAPI{}

	out, err := runApp(t, api, "", "create",
		"--name", "Digest",
		"--node", "Read from Google Docs=notes",
		"--node", "Write to Google Docs=summary",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Created flow")

	flows := api.snapshot()
	require.Len(t, flows, 1)
	assert.Equal(t, "Digest", flows[0].Name)
	require.Len(t, flows[0].Nodes, 2)
	assert.NotEmpty(t, flows[0].Nodes[0].ID)
	assert.Equal(t, models.NodeTypeWriteToGoogleDocs, flows[0].Nodes[1].Type)
}

func TestCreate_RequiresName(t *testing.T) {
	api := &fakeAPI{}

	out, err := runApp(t, api, "", "create", "--node", "Read from Google Docs=notes")
	require.Error(t, err)
	assert.Contains(t, out, "Flow name is required!")
	assert.Empty(t, api.snapshot())
}

func TestImport_UnknownType(t *testing.T) {
	api := &fakeAPI{}
	path := filepath.Join(t.TempDir(), "flow.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Name":"Bad","Nodes":[{"Type":"Unsupported","Config":""}]}`), 0o600))

	out, err := runApp(t, api, "", "import", path)
	require.Error(t, err)
	assert.Contains(t, out, "Unsupported")
	assert.Empty(t, api.snapshot())
}

func TestExportThenImport(t *testing.T) {
	api := &fakeAPI{flows: []models.Flow{digestFlow()}}
	dir := t.TempDir()

	_, err := runApp(t, api, "", "export", "--out", dir, "f1")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "Daily Digest.json"))
	require.NoError(t, err)

	out, err := runApp(t, api, string(data), "import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `Imported flow "Daily Digest" successfully!`)

	flows := api.snapshot()
	require.Len(t, flows, 2)
	assert.NotEqual(t, "f1", flows[1].ID)
	assert.Equal(t, models.NodeTypePromptLLM, flows[1].Nodes[1].Type)
}

func TestRun(t *testing.T) {
	api := &fakeAPI{flows: []models.Flow{digestFlow()}}

	out, err := runApp(t, api, "", "run", "f1")
	require.NoError(t, err)
	assert.Contains(t, out, "Flow executed successfully.")
	assert.Equal(t, 1, api.listed)

	api.failRun = true

	_, err = runApp(t, api, "", "run", "f1")
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	api := &fakeAPI{flows: []models.Flow{digestFlow()}}

	out, err := runApp(t, api, "n\n", "delete", "f1")
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to delete this flow?")
	assert.Len(t, api.snapshot(), 1)

	out, err = runApp(t, api, "", "delete", "--yes", "f1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted flow f1")
	assert.Empty(t, api.snapshot())
}

func TestEdit(t *testing.T) {
	api := &fakeAPI{flows: []models.Flow{digestFlow()}}

	out, err := runApp(t, api, "", "edit",
		"--name", "Weekly Digest",
		"--remove-node", "n2",
		"--set-config", "n1=journal",
		"--add-node", "Write to Google Docs=digest",
		"f1",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Updated flow f1")

	flows := api.snapshot()
	require.Len(t, flows, 1)
	assert.Equal(t, "Weekly Digest", flows[0].Name)
	require.Len(t, flows[0].Nodes, 2)
	assert.Equal(t, "journal", flows[0].Nodes[0].Config)
	assert.Equal(t, models.NodeTypeWriteToGoogleDocs, flows[0].Nodes[1].Type)
	assert.Equal(t, "digest", flows[0].Nodes[1].Config)

	_, err = runApp(t, api, "", "edit", "--name", "x", "missing")
	require.Error(t, err)
}
