// Package testutil provides testing utilities for tabular
package testutil

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/tabular/pkg/column"
	"github.com/ajitpratap0/tabular/pkg/logger"
)

// TestLogger routes the global engine logger to the test output for the
// duration of the test and returns it.
func TestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	l := zaptest.NewLogger(t)
	t.Cleanup(logger.SwapGlobal(l))
	return l
}

// SmallChunks returns column options forcing a tiny per-chunk capacity so
// tests cross chunk boundaries with a handful of rows. Chunk addressing must
// never leak into observable behavior; tests compare results under
// SmallChunks against the default capacity.
func SmallChunks(capacity int64) []column.Option {
	return []column.Option{column.WithChunkCapacity(capacity)}
}
