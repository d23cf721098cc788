package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iksnae/docchat/internal"
	"github.com/iksnae/docchat/internal/api"
	"github.com/iksnae/docchat/internal/kv"
)

// openStore opens the configured key-value store. The caller closes it.
func openStore() (kv.Store, error) {
	store, err := kv.Open(appConfig.Store.Driver, appConfig.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", appConfig.Store.Driver, err)
	}
	internal.LogDebug("Opened %s store %s", appConfig.Store.Driver, appConfig.Store.DSN)
	return store, nil
}

// openSessionStore opens the store and wraps it in a ChatSessionStore
func openSessionStore() (*internal.ChatSessionStore, func(), error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			internal.LogWarn("Failed to close store: %v", err)
		}
	}
	return internal.NewChatSessionStore(store), closeFn, nil
}

// newClient creates a backend client from the configuration
func newClient() (*api.Client, error) {
	return api.NewClient(
		appConfig.Backend.URL,
		appConfig.Backend.Timeout,
		api.WithSummaryCacheSize(appConfig.SummaryCacheSize),
	)
}

// signalContext is cancelled on interrupt so watch loops stop cleanly
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// warnRecovered reports a recovered corrupt-state error and passes others through
func warnRecovered(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, internal.ErrCorruptState) {
		internal.PrintWarning(fmt.Sprintf("Discarded unreadable saved data: %v", err))
		return nil
	}
	return err
}
