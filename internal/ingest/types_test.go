package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"sales", "stock", "catalog", "users"} {
		kind, ok := ParseKind(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, Kind(valid), kind)
	}

	_, ok := ParseKind("purchases")
	assert.False(t, ok)
	_, ok = ParseKind("")
	assert.False(t, ok)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Greater(t, cfg.WorkerCount, 0)
	assert.NotEmpty(t, cfg.SpoolDir)
}
