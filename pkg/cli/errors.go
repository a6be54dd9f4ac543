package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/api"
)

// CLIError wraps failures with a user-facing message and an actionable hint
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts API failures into CLIErrors with hints. Other errors are
// returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.IsTransport():
		return NewCLIError("cannot reach the reviews API",
			"Check --base-url / RC_API_URL, or start a local fixture with 'rc mock-server'", err)
	case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
		return NewCLIError(apiErr.Message,
			"Check api.api_key in your config or set RC_API_KEY", err)
	case apiErr.Status == http.StatusNotFound:
		return NewCLIError(apiErr.Message, "Run 'rc list' to see valid review ids", err)
	}
	return NewCLIError(apiErr.Message, "", err)
}

// ExitCode returns the process exit code for err
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.ExitCode != 0 {
		return cliErr.ExitCode
	}
	return 1
}

func printError(w io.Writer, err error) {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		fmt.Fprintf(w, "Error: %s\n", cliErr.Message)
		if cliErr.Hint != "" {
			fmt.Fprintf(w, "Hint: %s\n", cliErr.Hint)
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
