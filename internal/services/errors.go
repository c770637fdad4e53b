package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the pipeline error taxonomy. Pre-flight markers
// (unknown format, incompatible format, security threat) surface
// synchronously at submission; conversion and timeout markers are captured
// on the job record after asynchronous execution.
var (
	ErrUnknownFormat      = errors.New("unknown format")
	ErrIncompatibleFormat = errors.New("incompatible format")
	ErrSecurityThreat     = errors.New("security threat")
	ErrUnknownTier        = errors.New("unknown quality tier")
	ErrConversion         = errors.New("conversion failure")
	ErrTimeout            = errors.New("timeout")
	ErrNotFound           = errors.New("not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrExternalTool       = errors.New("external tool error")
	ErrConfiguration      = errors.New("configuration error")
	ErrTransient          = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsPreflight reports whether an error belongs to the synchronous
// pre-flight class that must never create a job.
func IsPreflight(err error) bool {
	return errors.Is(err, ErrUnknownFormat) ||
		errors.Is(err, ErrIncompatibleFormat) ||
		errors.Is(err, ErrSecurityThreat) ||
		errors.Is(err, ErrUnknownTier)
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
