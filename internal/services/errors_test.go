package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ytscribe/internal/services"
)

func TestClassifySentinels(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want services.Code
	}{
		{"invalid input", services.ErrInvalidInput, services.CodeInvalidInput},
		{"rate limited", services.ErrRateLimited, services.CodeRateLimited},
		{"not found", services.ErrNotFound, services.CodeNotFound},
		{"timeout", services.ErrTimeout, services.CodeTimeout},
		{"deadline", context.DeadlineExceeded, services.CodeTimeout},
		{"empty", services.ErrEmpty, services.CodeEmpty},
		{"tool unavailable", services.ErrToolUnavailable, services.CodeToolUnavailable},
		{"wrapped", fmt.Errorf("outer: %w", services.ErrRateLimited), services.CodeRateLimited},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Classify(tc.err); got != tc.want {
				t.Fatalf("Classify(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestClassifySubstrings(t *testing.T) {
	cases := []struct {
		message string
		want    services.Code
	}{
		{"HTTP Error 429: Too Many Requests", services.CodeRateLimited},
		{"YouTube is blocking requests from your IP", services.CodeRateLimited},
		{"got captcha interstitial", services.CodeRateLimited},
		{"request timed out after 25s", services.CodeTimeout},
		{`exec: "yt-dlp": executable file not found in $PATH`, services.CodeToolUnavailable},
		{"something else entirely", services.CodeGeneric},
	}
	for _, tc := range cases {
		if got := services.Classify(errors.New(tc.message)); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestClassifyNil(t *testing.T) {
	if got := services.Classify(nil); got != "" {
		t.Fatalf("Classify(nil) = %q, want empty", got)
	}
}

func TestWrapTagsMarker(t *testing.T) {
	err := services.Wrap(services.ErrRateLimited, "hosted-api", "get", "status 429", nil)
	if !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("expected wrapped error to match ErrRateLimited: %v", err)
	}
	for _, fragment := range []string{"hosted-api", "get", "status 429"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %q", fragment, err.Error())
		}
	}
}

func TestWrapWithoutMarkerKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := services.Wrap(nil, "ytdlp", "run", "", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to survive wrapping: %v", err)
	}
}

func TestDetailTruncates(t *testing.T) {
	long := strings.Repeat("x", 200)
	detail := services.Detail(errors.New(long))
	if len(detail) != 53 {
		t.Fatalf("detail length = %d, want 53 (50 chars + ellipsis)", len(detail))
	}
	if !strings.HasSuffix(detail, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", detail)
	}
	if services.Detail(nil) != "" {
		t.Fatal("expected empty detail for nil error")
	}
}
