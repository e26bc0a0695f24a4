package graphnode

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want Kind
	}{
		{"subgraph already exists", KindAlreadyExists},
		{"unchanged", KindUnchanged},
		{"subgraph not found", KindNotFound},
		{"the graft base is invalid: deployment not found: QmX", KindGraftBaseMissing},
		{"internal error", KindRemote},
		{"", KindRemote},
	}

	for _, tt := range tests {
		if got := ClassifyMessage(tt.msg); got != tt.want {
			t.Errorf("ClassifyMessage(%q) = %s, want %s", tt.msg, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"remote", &RemoteError{Method: MethodCreate, Message: "name already exists"}, KindAlreadyExists},
		{"wrapped remote", fmt.Errorf("ensure: %w", &RemoteError{Method: MethodReassign, Message: "unchanged"}), KindUnchanged},
		{"timeout", &TransportError{Method: MethodDeploy, Err: ErrTimeout}, KindTimeout},
		{"transport", &TransportError{Method: MethodDeploy, Err: errors.New("connection refused")}, KindTransport},
		// Транспортная ошибка не классифицируется по тексту
		{"transport with message", &TransportError{Method: MethodDeploy, Err: errors.New("already exists")}, KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}
