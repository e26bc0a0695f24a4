package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/Subgraphd/internal/domain"
	"github.com/shaiso/Subgraphd/internal/repo"
)

const (
	deploymentA = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	deploymentB = "QmUNLLsPACCz1vLxQVkXqqLX5R1X345qqfHbsf67hvA3Nn"
)

// --- Fakes ---

type fakeActions struct {
	actions    []*domain.Action
	lastFilter repo.ActionFilter
	createErr  error
}

func (f *fakeActions) Create(_ context.Context, a *domain.Action) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.actions = append(f.actions, a)
	return nil
}

func (f *fakeActions) GetByID(_ context.Context, id uuid.UUID) (*domain.Action, error) {
	for _, a := range f.actions {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeActions) List(_ context.Context, filter repo.ActionFilter) ([]domain.Action, error) {
	f.lastFilter = filter
	var out []domain.Action
	for _, a := range f.actions {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Deployment != "" && a.Deployment != filter.Deployment {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeActions) Count(ctx context.Context, filter repo.ActionFilter) (int, error) {
	out, _ := f.List(ctx, filter)
	return len(out), nil
}

type fakeRules struct {
	rules   []*domain.IndexingRule
	listErr error
}

func (f *fakeRules) Get(_ context.Context, identifier string) (*domain.IndexingRule, error) {
	for _, r := range f.rules {
		if r.Identifier == identifier {
			return r, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeRules) List(_ context.Context, filter repo.RuleFilter) ([]*domain.IndexingRule, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.IndexingRule
	for _, r := range f.rules {
		if len(filter.DecisionBases) > 0 && r.DecisionBasis != filter.DecisionBases[0] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type fakePublisher struct {
	published []*domain.Action
	err       error
}

func (f *fakePublisher) PublishActionQueued(_ context.Context, a *domain.Action) error {
	f.published = append(f.published, a)
	return f.err
}

type fakePool []domain.NodeID

func (p fakePool) Pool() []domain.NodeID { return p }

type testEnv struct {
	actions   *fakeActions
	rules     *fakeRules
	publisher *fakePublisher
	mux       *http.ServeMux
}

func newTestEnv() *testEnv {
	env := &testEnv{
		actions:   &fakeActions{},
		rules:     &fakeRules{},
		publisher: &fakePublisher{},
		mux:       http.NewServeMux(),
	}
	h := NewHandler(Config{
		Actions:   env.actions,
		Rules:     env.rules,
		Publisher: env.publisher,
		Nodes:     fakePool{"nodeA", "nodeB"},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	h.RegisterRoutes(env.mux)
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// --- Tests ---

func TestEnsureDeployment(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/api/v1/deployments", `{"deployment":"`+deploymentA+`","node":"nodeB"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body)
	}

	resp := decode[struct{ Data ActionResponse }](t, rec)
	if resp.Data.Type != "ENSURE" || resp.Data.Status != "QUEUED" {
		t.Errorf("unexpected action: %+v", resp.Data)
	}
	if resp.Data.Name != "indexer-agent/79ojWnPbdG" {
		t.Errorf("expected default name, got %q", resp.Data.Name)
	}
	if resp.Data.Node != "nodeB" {
		t.Errorf("expected node nodeB, got %q", resp.Data.Node)
	}

	if len(env.actions.actions) != 1 {
		t.Fatalf("expected 1 stored action, got %d", len(env.actions.actions))
	}
	if len(env.publisher.published) != 1 {
		t.Errorf("expected action.queued to be published")
	}
}

func TestEnsureDeployment_ExplicitName(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/api/v1/deployments", `{"deployment":"`+deploymentA+`","name":"org/subgraph"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if got := env.actions.actions[0].Name; got != "org/subgraph" {
		t.Errorf("expected explicit name, got %q", got)
	}
}

func TestEnsureDeployment_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"invalid deployment", `{"deployment":"Qm123"}`},
		{"missing deployment", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			rec := env.do(http.MethodPost, "/api/v1/deployments", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			resp := decode[ErrorResponse](t, rec)
			if resp.Error.Code != ErrCodeBadRequest {
				t.Errorf("expected BAD_REQUEST, got %s", resp.Error.Code)
			}
			if len(env.actions.actions) != 0 {
				t.Error("no action should be stored")
			}
		})
	}
}

func TestEnsureDeployment_PublishFailureStillAccepted(t *testing.T) {
	env := newTestEnv()
	env.publisher.err = errors.New("channel closed")

	rec := env.do(http.MethodPost, "/api/v1/deployments", `{"deployment":"`+deploymentA+`"}`)
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}
}

func TestEnsureDeployment_StoreFailure(t *testing.T) {
	env := newTestEnv()
	env.actions.createErr = errors.New("db down")

	rec := env.do(http.MethodPost, "/api/v1/deployments", `{"deployment":"`+deploymentA+`"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if len(env.publisher.published) != 0 {
		t.Error("nothing should be published when the action was not stored")
	}
}

func TestRemoveDeployment(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodDelete, "/api/v1/deployments/"+deploymentB, "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	a := env.actions.actions[0]
	if a.Type != domain.ActionTypeRemove || a.Deployment != deploymentB {
		t.Errorf("unexpected action: %+v", a)
	}

	rec = env.do(http.MethodDelete, "/api/v1/deployments/not-a-cid", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestListActions(t *testing.T) {
	env := newTestEnv()
	done := domain.NewEnsureAction("", deploymentA, "")
	done.Status = domain.ActionStatusSucceeded
	env.actions.actions = []*domain.Action{
		done,
		domain.NewEnsureAction("", deploymentB, ""),
		domain.NewRemoveAction(deploymentA),
	}

	rec := env.do(http.MethodGet, "/api/v1/actions?status=QUEUED&deployment="+deploymentA+"&limit=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[struct {
		Data  []ActionResponse
		Total int
	}](t, rec)
	if len(resp.Data) != 1 || resp.Total != 1 {
		t.Fatalf("expected 1 action, got %d (total %d)", len(resp.Data), resp.Total)
	}
	if resp.Data[0].Type != "REMOVE" {
		t.Errorf("expected REMOVE action, got %s", resp.Data[0].Type)
	}
	if env.actions.lastFilter.Limit != 10 {
		t.Errorf("expected limit 10, got %d", env.actions.lastFilter.Limit)
	}
}

func TestListActions_InvalidFilters(t *testing.T) {
	env := newTestEnv()

	for _, path := range []string{
		"/api/v1/actions?status=DONE",
		"/api/v1/actions?deployment=foo",
	} {
		if rec := env.do(http.MethodGet, path, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestGetAction(t *testing.T) {
	env := newTestEnv()
	a := domain.NewEnsureAction("", deploymentA, "")
	env.actions.actions = []*domain.Action{a}

	rec := env.do(http.MethodGet, "/api/v1/actions/"+a.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[struct{ Data ActionResponse }](t, rec)
	if resp.Data.ID != a.ID {
		t.Errorf("expected %s, got %s", a.ID, resp.Data.ID)
	}

	if rec := env.do(http.MethodGet, "/api/v1/actions/"+uuid.NewString(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/v1/actions/nope", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRules(t *testing.T) {
	env := newTestEnv()
	env.rules.rules = []*domain.IndexingRule{
		{Identifier: deploymentA, IdentifierType: domain.IdentifierTypeDeployment, DecisionBasis: domain.DecisionBasisOffchain},
		{Identifier: "global", IdentifierType: domain.IdentifierTypeGroup, DecisionBasis: domain.DecisionBasisRules},
	}

	rec := env.do(http.MethodGet, "/api/v1/rules?decision_basis=offchain", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	list := decode[struct{ Data []RuleResponse }](t, rec)
	if len(list.Data) != 1 || list.Data[0].Identifier != deploymentA {
		t.Errorf("unexpected rules: %+v", list.Data)
	}

	if rec := env.do(http.MethodGet, "/api/v1/rules?decision_basis=sometimes", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown decision basis, got %d", rec.Code)
	}

	rec = env.do(http.MethodGet, "/api/v1/rules/global", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	one := decode[struct{ Data RuleResponse }](t, rec)
	if one.Data.IdentifierType != "group" {
		t.Errorf("unexpected rule: %+v", one.Data)
	}

	if rec := env.do(http.MethodGet, "/api/v1/rules/"+deploymentB, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRules_StoreFailure(t *testing.T) {
	env := newTestEnv()
	env.rules.listErr = errors.New("db down")

	rec := env.do(http.MethodGet, "/api/v1/rules", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	resp := decode[ErrorResponse](t, rec)
	if strings.Contains(resp.Error.Message, "db down") {
		t.Error("internal error details must not leak to clients")
	}
}

func TestListNodes(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodGet, "/api/v1/nodes", "")
	resp := decode[struct {
		Data  []NodeResponse
		Total int
	}](t, rec)
	if resp.Total != 2 || resp.Data[0].ID != "nodeA" || resp.Data[1].ID != "nodeB" {
		t.Errorf("unexpected nodes: %+v", resp)
	}
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 50},
		{"10", 10},
		{"abc", 50},
		{"-1", 50},
	}
	for _, tt := range tests {
		if got := parseIntParam(tt.in, 50); got != tt.want {
			t.Errorf("parseIntParam(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRequestID(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodGet, "/api/v1/nodes", "")
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Error("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nodes", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	rec = httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got != "req-42" {
		t.Errorf("expected request id to be echoed, got %q", got)
	}
}
