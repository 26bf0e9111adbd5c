package apierror

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
)

func TestUnknownSubtask(t *testing.T) {
	e := UnknownSubtask("LoginWeirdNewSubtask")
	jsonBytes, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("TestUnknownSubtask: failed to marshal error. %s", err.Error())
	}
	want := `{"errcode":"UNKNOWN_SUBTASK","error":"unrecognised login subtask: LoginWeirdNewSubtask"}`
	if string(jsonBytes) != want {
		t.Errorf("TestUnknownSubtask: want %s, got %s", want, string(jsonBytes))
	}
}

func TestBootstrapFailedKeepsBody(t *testing.T) {
	e := BootstrapFailed(`{"errors":[{"code":200}]}`)
	if e.Body != `{"errors":[{"code":200}]}` {
		t.Errorf("TestBootstrapFailedKeepsBody: body not retained, got %q", e.Body)
	}
}

func TestCodeUnwraps(t *testing.T) {
	err := errors.Wrap(CsrfTokenAbsent(), "sending login step")
	if got := Code(err); got != ErrCodeCsrfTokenAbsent {
		t.Errorf("TestCodeUnwraps: want %s, got %s", ErrCodeCsrfTokenAbsent, got)
	}
	if got := Code(errors.New("plain")); got != "" {
		t.Errorf("TestCodeUnwraps: want empty code for plain error, got %s", got)
	}
}
