package server_test

import (
	"context"
	"errors"
	"testing"

	"github.com/equinox-loot/loot-bridge/internal/server"
	"github.com/stretchr/testify/assert"
)

func TestShutdownHooks_ExecutesInOrder(t *testing.T) {
	hooks := &server.ShutdownHooks{}

	var order []string
	hooks.Add("first", func() error {
		order = append(order, "first")
		return nil
	})
	hooks.AddContext("second", func(context.Context) error {
		order = append(order, "second")
		return nil
	})

	hooks.Execute(context.Background())

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestShutdownHooks_FailureDoesNotStopRemaining(t *testing.T) {
	hooks := &server.ShutdownHooks{}

	var ran bool
	hooks.Add("failing", func() error {
		return errors.New("close failed")
	})
	hooks.Add("after", func() error {
		ran = true
		return nil
	})

	hooks.Execute(context.Background())

	assert.True(t, ran, "a failing hook must not prevent later hooks")
}

func TestShutdownHooks_IgnoresNil(t *testing.T) {
	hooks := &server.ShutdownHooks{}

	hooks.Add("nil-hook", nil)
	hooks.AddContext("nil-context-hook", nil)

	// must not panic
	hooks.Execute(context.Background())
}
