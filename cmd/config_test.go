package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("should accept a buffer at least as large as the history limit", func(t *testing.T) {
		req := require.New(t)
		req.NoError(Config{SessionBufferSize: 256, HistoryLimit: 50}.Validate())
		req.NoError(Config{SessionBufferSize: 50, HistoryLimit: 50}.Validate())
	})

	t.Run("should reject a buffer smaller than the history limit", func(t *testing.T) {
		req := require.New(t)
		err := Config{SessionBufferSize: 16, HistoryLimit: 50}.Validate()
		req.Error(err)
		req.Contains(err.Error(), "HISTORY_LIMIT")
	})

	t.Run("should reject a non-positive buffer", func(t *testing.T) {
		req := require.New(t)
		req.Error(Config{SessionBufferSize: 0, HistoryLimit: 0}.Validate())
	})

	t.Run("should reject a negative history limit", func(t *testing.T) {
		req := require.New(t)
		req.Error(Config{SessionBufferSize: 64, HistoryLimit: -1}.Validate())
	})
}
