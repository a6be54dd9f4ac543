package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/api"
)

func TestCLIError(t *testing.T) {
	t.Run("Error with cause", func(t *testing.T) {
		e := NewCLIError("something failed", "try this", errors.New("root cause"))
		if e.Error() != "something failed: root cause" {
			t.Fatalf("unexpected: %s", e.Error())
		}
		if e.ExitCode != 1 {
			t.Fatalf("expected exit code 1, got %d", e.ExitCode)
		}
	})

	t.Run("Error without cause", func(t *testing.T) {
		e := NewCLIError("something failed", "try this", nil)
		if e.Error() != "something failed" {
			t.Fatalf("unexpected: %s", e.Error())
		}
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root")
		if !errors.Is(NewCLIError("msg", "", cause), cause) {
			t.Fatal("errors.Is should match wrapped cause")
		}
	})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantHint string
		wantCLI  bool
	}{
		{name: "nil returns nil"},
		{
			name:     "transport failure",
			err:      &api.Error{Status: 0, Message: api.FallbackMessage, Err: errors.New("connection refused")},
			wantMsg:  "cannot reach the reviews API",
			wantHint: "rc mock-server",
			wantCLI:  true,
		},
		{
			name:     "unauthorized",
			err:      &api.Error{Status: 401, Message: "Invalid API key"},
			wantMsg:  "Invalid API key",
			wantHint: "RC_API_KEY",
			wantCLI:  true,
		},
		{
			name:     "not found",
			err:      &api.Error{Status: 404, Message: "Review not found"},
			wantMsg:  "Review not found",
			wantHint: "rc list",
			wantCLI:  true,
		},
		{
			name:    "server error keeps message",
			err:     &api.Error{Status: 500, Message: "Internal error"},
			wantMsg: "Internal error",
			wantCLI: true,
		},
		{
			name: "unmapped error passes through",
			err:  errors.New("plain"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			var cliErr *CLIError
			isCLI := errors.As(got, &cliErr)
			if isCLI != tt.wantCLI {
				t.Fatalf("CLIError = %v, want %v (%v)", isCLI, tt.wantCLI, got)
			}
			if !isCLI {
				if got != tt.err {
					t.Errorf("unmapped error changed: %v", got)
				}
				return
			}
			if cliErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", cliErr.Message, tt.wantMsg)
			}
			if !strings.Contains(cliErr.Hint, tt.wantHint) {
				t.Errorf("hint = %q, want it to mention %q", cliErr.Hint, tt.wantHint)
			}
			if !errors.Is(got, tt.err) {
				t.Error("mapped error should wrap the original")
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Error("nil should exit 0")
	}
	if ExitCode(errors.New("x")) != 1 {
		t.Error("plain errors exit 1")
	}
	if ExitCode(&CLIError{Message: "x", ExitCode: 3}) != 3 {
		t.Error("CLIError exit code should be used")
	}
}

func TestPrintErrorShowsHint(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, NewCLIError("cannot reach the reviews API", "start rc mock-server", errors.New("dial")))
	out := buf.String()
	if !strings.Contains(out, "Error: cannot reach the reviews API") || !strings.Contains(out, "Hint: start rc mock-server") {
		t.Errorf("output = %q", out)
	}
}
