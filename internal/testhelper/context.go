package testhelper

import (
	"context"
	"testing"
)

// Context returns a context that is canceled when the test finishes. It stands
// in for testing.T.Context, which requires Go 1.24.
func Context(tb testing.TB) context.Context {
	tb.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	tb.Cleanup(cancel)
	return ctx
}
