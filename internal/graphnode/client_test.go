package graphnode

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shaiso/Subgraphd/internal/domain"
)

const testDeployment = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

type recordedCall struct {
	Method string
	Params map[string]string
}

// newRPCServer запускает тестовый endpoint, отвечающий reply на каждый вызов.
func newRPCServer(t *testing.T, reply func(method string) (result any, rpcErr *rpcError)) (*httptest.Server, *[]recordedCall) {
	t.Helper()

	var calls []recordedCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}

		body, _ := io.ReadAll(r.Body)
		var req struct {
			JSONRPC string            `json:"jsonrpc"`
			ID      uint64            `json:"id"`
			Method  string            `json:"method"`
			Params  map[string]string `json:"params"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body: %v", err)
			return
		}
		if req.JSONRPC != "2.0" {
			t.Errorf("expected jsonrpc 2.0, got %q", req.JSONRPC)
		}
		calls = append(calls, recordedCall{Method: req.Method, Params: req.Params})

		result, rpcErr := reply(req.Method)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func TestClient_CreateSubgraph(t *testing.T) {
	srv, calls := newRPCServer(t, func(string) (any, *rpcError) { return nil, nil })
	c := NewClient(ClientConfig{Endpoint: srv.URL})

	if err := c.CreateSubgraph(context.Background(), "indexer-agent/79ojWnPbdG"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(*calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(*calls))
	}
	call := (*calls)[0]
	if call.Method != MethodCreate {
		t.Errorf("expected %s, got %s", MethodCreate, call.Method)
	}
	if call.Params["name"] != "indexer-agent/79ojWnPbdG" {
		t.Errorf("unexpected name param: %v", call.Params)
	}
}

func TestClient_DeploySubgraph(t *testing.T) {
	srv, calls := newRPCServer(t, func(string) (any, *rpcError) {
		return Endpoints{
			Playground: "http://localhost:8000/subgraphs/name/x/graphql",
			Queries:    "http://localhost:8000/subgraphs/name/x",
		}, nil
	})
	c := NewClient(ClientConfig{Endpoint: srv.URL})

	endpoints, err := c.DeploySubgraph(context.Background(), "x", domain.MustParseDeploymentID(testDeployment), "nodeA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if endpoints.Queries != "http://localhost:8000/subgraphs/name/x" {
		t.Errorf("unexpected endpoints: %+v", endpoints)
	}

	call := (*calls)[0]
	if call.Method != MethodDeploy {
		t.Errorf("expected %s, got %s", MethodDeploy, call.Method)
	}
	if call.Params["name"] != "x" || call.Params["ipfs_hash"] != testDeployment || call.Params["node_id"] != "nodeA" {
		t.Errorf("unexpected params: %v", call.Params)
	}
}

func TestClient_ReassignSubgraph(t *testing.T) {
	srv, calls := newRPCServer(t, func(string) (any, *rpcError) { return nil, nil })
	c := NewClient(ClientConfig{Endpoint: srv.URL})

	err := c.ReassignSubgraph(context.Background(), domain.UnassignedNode, domain.MustParseDeploymentID(testDeployment))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := (*calls)[0]
	if call.Method != MethodReassign {
		t.Errorf("expected %s, got %s", MethodReassign, call.Method)
	}
	if call.Params["node_id"] != "removed" || call.Params["ipfs_hash"] != testDeployment {
		t.Errorf("unexpected params: %v", call.Params)
	}
}

func TestClient_RemoteErrorsPropagate(t *testing.T) {
	tests := []struct {
		name    string
		message string
		kind    Kind
	}{
		{"already exists", "subgraph name already exists: x", KindAlreadyExists},
		{"unchanged", "deployment assignment unchanged", KindUnchanged},
		{"graft base", "subgraph validation error: [the graft base is invalid: deployment not found: " + testDeployment + "]", KindGraftBaseMissing},
		{"other", "store error: connection refused", KindRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newRPCServer(t, func(string) (any, *rpcError) {
				return nil, &rpcError{Code: -32603, Message: tt.message}
			})
			c := NewClient(ClientConfig{Endpoint: srv.URL})

			err := c.ReassignSubgraph(context.Background(), "nodeA", domain.MustParseDeploymentID(testDeployment))
			if err == nil {
				t.Fatal("expected error")
			}

			remote, ok := AsRemote(err)
			if !ok {
				t.Fatalf("expected RemoteError, got %T", err)
			}
			if remote.Message != tt.message || remote.Code != -32603 {
				t.Errorf("unexpected remote error: %+v", remote)
			}
			if got := Classify(err); got != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, got)
			}
		})
	}
}

func TestClient_DeployTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(ClientConfig{Endpoint: srv.URL, DeployTimeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := c.DeploySubgraph(context.Background(), "x", domain.MustParseDeploymentID(testDeployment), "nodeA")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
	if !IsTransport(err) {
		t.Errorf("timeout should be a transport error, got %T", err)
	}
	if Classify(err) != KindTimeout {
		t.Errorf("expected KindTimeout, got %s", Classify(err))
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("deploy was not bounded by timeout: %v", elapsed)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(ClientConfig{Endpoint: url})
	err := c.CreateSubgraph(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if Classify(err) != KindTransport {
		t.Errorf("expected KindTransport, got %s (%v)", Classify(err), err)
	}
}

func TestClient_BadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{Endpoint: srv.URL})
	err := c.CreateSubgraph(context.Background(), "x")
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("expected ErrBadResponse, got %v", err)
	}
}

func TestClient_HTTPErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{Endpoint: srv.URL})
	err := c.CreateSubgraph(context.Background(), "x")
	if !IsTransport(err) {
		t.Errorf("expected transport error, got %v", err)
	}
}
