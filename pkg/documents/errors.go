package documents

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jzx17/gobulk/pkg/retry"
)

// FormatRemoteError renders a remote error as "[type] (Code: n) message",
// followed by "- response message" when the response adds something new
func FormatRemoteError(err *retry.RemoteError) string {
	var parts []string

	if err.Type != "" {
		parts = append(parts, fmt.Sprintf("[%s]", err.Type))
	}
	if err.Code != 0 {
		parts = append(parts, fmt.Sprintf("(Code: %d)", err.Code))
	}

	message := err.Message
	if message == "" {
		message = "An unknown error occurred"
	}
	parts = append(parts, message)

	if err.Response != nil && err.Response.Message != "" && err.Response.Message != err.Message {
		parts = append(parts, "- "+err.Response.Message)
	}

	return strings.Join(parts, " ")
}

// FormatError formats remote errors with FormatRemoteError and anything
// else with its Error text
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var remoteErr *retry.RemoteError
	if errors.As(err, &remoteErr) {
		return FormatRemoteError(remoteErr)
	}
	return err.Error()
}
