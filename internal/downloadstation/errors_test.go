package downloadstation

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ConfigurationError{Msg: "username is empty"}, "configuration error: username is empty"},
		{&InvalidInputError{Msg: "uri is empty"}, "invalid input: uri is empty"},
		{&AuthenticationError{Code: 400, Msg: "login rejected"}, "authentication failed: code=400, login rejected"},
		{&AuthenticationError{Msg: "login rejected"}, "authentication failed: login rejected"},
		{&APIError{Code: 119, Message: "failed to list tasks"}, "api error: code=119, failed to list tasks"},
		{&InvalidResponseError{Msg: "no data received"}, "invalid response: no data received"},
		{&TaskModificationError{Op: "pause", ID: "task_id_1"}, "failed to pause download task id: task_id_1"},
		{&TaskModificationError{Op: "clear completed"}, "failed to clear completed tasks"},
		{&TaskCreationError{Source: "https://example.com/test.iso"}, "failed to create download task: https://example.com/test.iso"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestNetworkErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := &NetworkError{Err: cause}

	if !errors.Is(err, cause) {
		t.Error("NetworkError should unwrap to its cause")
	}
	if got := err.Error(); got != "network error: dial tcp: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}
