package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewerVersion(t *testing.T) {
	t.Run("segments compare numerically", func(t *testing.T) {
		assert.True(t, newerVersion("24.200.001", "9.200.001"))
		assert.False(t, newerVersion("9.200.001", "24.200.001"))
		assert.True(t, newerVersion("24.200.002", "24.200.001"))
		assert.False(t, newerVersion("24.200.001", "24.200.001"))
	})

	t.Run("missing segments count as zero", func(t *testing.T) {
		assert.True(t, newerVersion("24.200.1", "24.200"))
		assert.False(t, newerVersion("24.200", "24.200.0"))
	})

	t.Run("empty current version always loses", func(t *testing.T) {
		assert.True(t, newerVersion("20.200.001", ""))
		assert.False(t, newerVersion("", ""))
	})
}
