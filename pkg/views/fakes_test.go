package views

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dukex/docflow/pkg/client"
	"github.com/dukex/docflow/pkg/models"
)

type apiCall struct {
	Op   string
	ID   string
	Flow models.Flow
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall

	listResult []models.Flow
	listErr    error
	createFn   func(models.Flow) (*models.Flow, error)
	updateErr  error
	deleteErr  error
	executeErr error
}

func (f *fakeAPI) record(call apiCall) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call)
}

func (f *fakeAPI) Calls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]apiCall(nil), f.calls...)
}

func (f *fakeAPI) List(_ context.Context) ([]models.Flow, error) {
	f.record(apiCall{Op: "list"})

	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.listResult, nil
}

func (f *fakeAPI) Create(_ context.Context, flow models.Flow) (*models.Flow, error) {
	f.record(apiCall{Op: "create", ID: flow.ID, Flow: flow.Clone()})

	if f.createFn != nil {
		return f.createFn(flow)
	}

	created := flow.Clone()

	return &created, nil
}

func (f *fakeAPI) Update(_ context.Context, id string, flow models.Flow) error {
	f.record(apiCall{Op: "update", ID: id, Flow: flow.Clone()})

	return f.updateErr
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	f.record(apiCall{Op: "delete", ID: id})

	return f.deleteErr
}

func (f *fakeAPI) Execute(_ context.Context, id string) (client.ExecutionResult, error) {
	f.record(apiCall{Op: "execute", ID: id})

	if f.executeErr != nil {
		return nil, f.executeErr
	}

	return client.ExecutionResult(`{"message":"Flow executed successfully."}`), nil
}

type fakeUI struct {
	alerts    []string
	prompts   []string
	confirm   bool
	downloads map[string][]byte
	route     string
}

func (u *fakeUI) Alert(message string) { u.alerts = append(u.alerts, message) }

func (u *fakeUI) Confirm(prompt string) bool {
	u.prompts = append(u.prompts, prompt)

	return u.confirm
}

func (u *fakeUI) Download(fileName string, data []byte) error {
	if u.downloads == nil {
		u.downloads = map[string][]byte{}
	}

	u.downloads[fileName] = data

	return nil
}

func (u *fakeUI) ToList()          { u.route = "/" }
func (u *fakeUI) ToEdit(id string) { u.route = "/update/" + id }

func (u *fakeUI) ports() Ports {
	return Ports{Notifier: u, Confirmer: u, Downloader: u, Navigator: u}
}

type sequenceGenerator struct {
	next int
}

func (g *sequenceGenerator) NewID() string {
	g.next++

	return fmt.Sprintf("id-%d", g.next)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fetchError(op string, status int) error {
	return &client.FetchError{Op: op, StatusCode: status, Detail: "boom"}
}
