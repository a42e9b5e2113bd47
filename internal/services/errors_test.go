package services_test

import (
	"errors"
	"testing"

	"erecord/internal/recording"
	"erecord/internal/services"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := services.Wrap(services.ErrTransport, "simplifile", "create package", "request failed", cause)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatal("expected transport marker")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause")
	}
}

func TestFailureStatus(t *testing.T) {
	cases := []struct {
		err  error
		want recording.Status
	}{
		{services.Wrap(services.ErrMalformedRow, "build", "", "missing account", nil), recording.StatusInvalid},
		{services.Wrap(services.ErrValidation, "validate", "", "empty grantee", nil), recording.StatusInvalid},
		{services.Wrap(services.ErrTransport, "simplifile", "", "timeout", nil), recording.StatusFailed},
		{errors.New("unclassified"), recording.StatusFailed},
	}
	for _, tc := range cases {
		if got := services.FailureStatus(tc.err); got != tc.want {
			t.Fatalf("FailureStatus(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestIsBatchFatal(t *testing.T) {
	if !services.IsBatchFatal(services.Wrap(services.ErrStructural, "align", "", "count mismatch", nil)) {
		t.Fatal("structural errors are batch fatal")
	}
	if services.IsBatchFatal(services.Wrap(services.ErrValidation, "validate", "", "bad date", nil)) {
		t.Fatal("validation errors are row scoped")
	}
}
