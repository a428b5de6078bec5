package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrRateLimited     = errors.New("rate limited")
	ErrNotFound        = errors.New("not found")
	ErrTimeout         = errors.New("timeout")
	ErrEmpty           = errors.New("empty transcript")
	ErrToolUnavailable = errors.New("tool unavailable")
)

// Code is the closed set of failure classifications used by the
// extraction pipeline to decide fallback behaviour.
type Code string

const (
	CodeInvalidInput    Code = "invalid_input"
	CodeRateLimited     Code = "rate_limited"
	CodeNotFound        Code = "not_found"
	CodeTimeout         Code = "timeout"
	CodeEmpty           Code = "empty"
	CodeToolUnavailable Code = "tool_unavailable"
	CodeGeneric         Code = "error"
)

func (c Code) String() string {
	if c == "" {
		return string(CodeGeneric)
	}
	return string(c)
}

// Wrap builds an error message that includes strategy context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, strategy, operation, message string, err error) error {
	detail := buildDetail(strategy, operation, message)
	if marker == nil {
		return wrapDetail(detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func wrapDetail(detail string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", detail, err)
	}
	return errors.New(detail)
}

// Classify maps an error to its pipeline code. Sentinel markers win; anything
// unmarked falls back to substring matching on the raw message. The substring
// rules mirror what the upstream tools actually emit (HTTP 429 text, yt-dlp
// "Too Many Requests", captcha interstitials) and live only here.
func Classify(err error) Code {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, ErrEmpty):
		return CodeEmpty
	case errors.Is(err, ErrToolUnavailable):
		return CodeToolUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimeout
	}

	message := strings.ToLower(err.Error())
	for _, token := range []string{"429", "too many requests", "too many", "rate limit", "blocking", "captcha"} {
		if strings.Contains(message, token) {
			return CodeRateLimited
		}
	}
	for _, token := range []string{"timeout", "deadline exceeded", "timed out"} {
		if strings.Contains(message, token) {
			return CodeTimeout
		}
	}
	if strings.Contains(message, "executable file not found") || strings.Contains(message, "not installed") {
		return CodeToolUnavailable
	}
	return CodeGeneric
}

// maxDetailLength caps how much raw tool output leaks into attempt summaries.
const maxDetailLength = 50

// Detail returns a short human-readable message for an error.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	message := strings.TrimSpace(err.Error())
	if len(message) > maxDetailLength {
		message = message[:maxDetailLength] + "..."
	}
	return message
}

func buildDetail(strategy, operation, message string) string {
	parts := make([]string, 0, 3)
	if strategy = strings.TrimSpace(strategy); strategy != "" {
		parts = append(parts, strategy)
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
