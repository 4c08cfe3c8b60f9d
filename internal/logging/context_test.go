package logging

import (
	"context"
	"strings"
	"testing"

	"padel-score-service/internal/testutil"
)

func TestWithLoggerRoundTrip(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	ctx := WithLogger(context.Background(), logger)

	if got := FromContext(ctx, nil); got != logger {
		t.Fatal("expected stored logger back from context")
	}
}

func TestFromContextFallsBack(t *testing.T) {
	fallback, _ := testutil.NewBufferLogger()

	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Fatal("expected fallback when context has no logger")
	}
	if got := FromContext(nil, fallback); got != fallback { //nolint:staticcheck // nil context is the degenerate caller case under test
		t.Fatal("expected fallback for nil context")
	}
}

func TestWithLoggerIgnoresNil(t *testing.T) {
	ctx := context.Background()
	if got := WithLogger(ctx, nil); got != ctx {
		t.Fatal("expected unchanged context for nil logger")
	}
}

func TestHelpersTolerateNilLogger(t *testing.T) {
	Debug(nil, "ignored")
	Info(nil, "ignored")
	Warn(nil, "ignored")
	Error(nil, "ignored", nil)
}

func TestErrorAppendsErrField(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()

	Error(logger, "boom", context.DeadlineExceeded)

	out := buf.String()
	if out == "" {
		t.Fatal("expected log output")
	}
	if want := "deadline exceeded"; !strings.Contains(out, want) {
		t.Fatalf("expected output to mention %q, got %q", want, out)
	}
}
