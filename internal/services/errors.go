package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrData marks malformed dataset input. Fatal before streaming starts.
	ErrData = errors.New("data error")
	// ErrAssetMissing marks a missing image, font, or music asset. Recovered
	// locally with a documented fallback; never fatal on its own.
	ErrAssetMissing = errors.New("asset missing")
	// ErrEncoder marks an encoder subprocess launch or write failure. Fatal;
	// the supervisor restarts the process with backoff.
	ErrEncoder = errors.New("encoder error")
	// ErrAnnouncement marks a webhook delivery failure. Logged and ignored.
	ErrAnnouncement = errors.New("announcement error")
	// ErrConfiguration marks an unusable configuration value.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrEncoder
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether the error must stop the stream. Asset misses and
// announcement failures are recovered in place; everything else tagged by
// this package aborts the run.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAssetMissing) || errors.Is(err, ErrAnnouncement) {
		return false
	}
	return errors.Is(err, ErrData) || errors.Is(err, ErrEncoder) || errors.Is(err, ErrConfiguration)
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
