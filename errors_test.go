package conformd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeError(t *testing.T) {
	err := NewRuntimeError(errors.New("plan file unreadable"))
	assert.True(t, IsRuntimeError(err))
	assert.False(t, IsConformanceError(err))
	assert.Contains(t, err.Error(), "runtime error: plan file unreadable")

	wrapped := fmt.Errorf("starting service: %w", err)
	assert.True(t, IsRuntimeError(wrapped))
	assert.Equal(t, "plan file unreadable", errors.Unwrap(err).Error())
}

func TestConformanceError(t *testing.T) {
	err := NewConformanceError("2 required check(s) failed or errored")
	assert.True(t, IsConformanceError(err))
	assert.False(t, IsRuntimeError(err))
	assert.Contains(t, err.Error(), "conformance failure: 2 required check(s)")

	wrapped := fmt.Errorf("run finished: %w", err)
	assert.True(t, IsConformanceError(wrapped))
}

func TestErrorPredicatesOnNil(t *testing.T) {
	assert.False(t, IsRuntimeError(nil))
	assert.False(t, IsConformanceError(nil))
	assert.False(t, IsRuntimeError(errors.New("plain")))
	assert.False(t, IsConformanceError(errors.New("plain")))
}
