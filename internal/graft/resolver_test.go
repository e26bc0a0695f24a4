package graft

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/shaiso/Subgraphd/internal/domain"
)

const (
	testBase  = "QmUNLLsPACCz1vLxQVkXqqLX5R1X345qqfHbsf67hvA3Nn"
	graftText = "subgraph validation error: [the graft base is invalid: deployment not found: "
)

func newTestResolver(buf *bytes.Buffer) *Resolver {
	return NewResolver(slog.New(slog.NewTextHandler(buf, nil)))
}

func TestExtractGraftBase(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"typical", graftText + testBase + "]", testBase},
		{"exact end", graftText + testBase, testBase},
		{"first Qm wins", graftText + testBase + " and QmPZ9gcCEpqKTo6aq61g2nXGUhM4iCL3ewB6LDXZCtioEB", testBase},
		{"truncated", graftText + "QmUNLLsPACCz1vLx", "QmUNLLsPACCz1vLx"},
		{"no token", graftText + "<unknown>", ""},
		{"no signature", "deployment not found: " + testBase, ""},
		{"Qm before signature ignored", "QmPZ9gcCEpqKTo6aq61g2nXGUhM4iCL3ewB6LDXZCtioEB " + graftText + testBase, testBase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractGraftBase(tt.message); got != tt.want {
				t.Errorf("ExtractGraftBase() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve_Resolved(t *testing.T) {
	var buf bytes.Buffer
	r := newTestResolver(&buf)

	res := r.Resolve(graftText+testBase+"]", 0, 1)
	if res.Kind != Resolved {
		t.Fatalf("expected Resolved, got %s", res.Kind)
	}
	if res.Base != domain.DeploymentID(testBase) {
		t.Errorf("expected base %s, got %s", testBase, res.Base)
	}
}

func TestResolve_NotGraftFailure(t *testing.T) {
	var buf bytes.Buffer
	r := newTestResolver(&buf)

	res := r.Resolve("subgraph deployment failed: store unavailable", 0, 3)
	if res.Kind != NotGraftFailure {
		t.Errorf("expected NotGraftFailure, got %s", res.Kind)
	}
	if !res.Base.IsZero() {
		t.Errorf("expected empty base, got %s", res.Base)
	}
}

func TestResolve_Exhausted(t *testing.T) {
	tests := []struct {
		depth, maxDepth int
	}{
		{0, 0},
		{1, 1},
		{3, 2},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		r := newTestResolver(&buf)

		res := r.Resolve(graftText+testBase+"]", tt.depth, tt.maxDepth)
		if res.Kind != Exhausted {
			t.Errorf("depth=%d max=%d: expected Exhausted, got %s", tt.depth, tt.maxDepth, res.Kind)
		}
		if res.Base != domain.DeploymentID(testBase) {
			t.Errorf("expected base to be reported, got %q", res.Base)
		}
		if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), testBase) {
			t.Errorf("expected warning with graft base, got %q", buf.String())
		}
	}
}

func TestResolve_Malformed(t *testing.T) {
	tests := []string{
		graftText + "QmUNLLsPACCz1vLx",
		graftText + "<unknown>",
		// 46 символов, но не base58 (0 и l недопустимы)
		graftText + "Qm0000000000000000000000000000000000000000000l",
	}

	for _, msg := range tests {
		var buf bytes.Buffer
		r := newTestResolver(&buf)

		res := r.Resolve(msg, 0, 2)
		if res.Kind != Malformed {
			t.Errorf("Resolve(%q) = %s, want Malformed", msg, res.Kind)
		}
	}
}

func TestResolve_ExhaustedBeforeMalformed(t *testing.T) {
	var buf bytes.Buffer
	r := newTestResolver(&buf)

	res := r.Resolve(graftText+"QmTrunc", 0, 0)
	if res.Kind != Exhausted {
		t.Errorf("expected Exhausted, got %s", res.Kind)
	}
	if !res.Base.IsZero() {
		t.Errorf("invalid token should not be reported as base, got %s", res.Base)
	}
	if !strings.Contains(buf.String(), "graft base token is not a deployment id") {
		t.Errorf("expected parse error to be logged, got %q", buf.String())
	}
}
