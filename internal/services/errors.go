package services

import (
	"errors"
	"fmt"
	"strings"

	"erecord/internal/recording"
)

var (
	// ErrStructural marks row/document-pair misalignment. Batch-fatal: raised
	// before any row is built or submitted.
	ErrStructural = errors.New("structural error")
	// ErrMalformedRow marks a row whose source fields cannot produce the
	// package the active profile requires. Row-scoped.
	ErrMalformedRow = errors.New("malformed row")
	// ErrValidation marks a built package that failed pre-submission checks.
	// Row-scoped and never retried.
	ErrValidation = errors.New("validation error")
	// ErrTransport marks network or service failures talking to the recording
	// service. Retried with backoff up to the configured cap.
	ErrTransport = errors.New("transport error")
	// ErrRejected marks a submission the recording service refused. Row-scoped
	// and never retried: the service gave a definitive answer.
	ErrRejected = errors.New("submission rejected")
	// ErrConfiguration marks unusable local configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later status classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a row error to the terminal status the orchestrator
// should record for that row.
func FailureStatus(err error) recording.Status {
	switch {
	case errors.Is(err, ErrMalformedRow), errors.Is(err, ErrValidation):
		return recording.StatusInvalid
	default:
		return recording.StatusFailed
	}
}

// IsBatchFatal reports whether an error must abort the whole batch rather
// than a single row.
func IsBatchFatal(err error) bool {
	return errors.Is(err, ErrStructural) || errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
