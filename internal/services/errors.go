package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBackend marks failures talking to the storage or mail service.
	ErrBackend = errors.New("backend error")
	// ErrRead marks content that could not be parsed as a spreadsheet.
	ErrRead = errors.New("read error")
	// ErrConfiguration marks failures that will not resolve without a
	// configuration change, such as a missing identity column.
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
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

// IsPassFatal reports whether an error must abort the whole processing pass
// rather than being isolated to one identity or spreadsheet. Only
// configuration errors qualify: they cannot resolve before the next pass.
func IsPassFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
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
