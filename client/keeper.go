// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultStatusInterval  = 30 * time.Second
	DefaultRefreshInterval = 20 * time.Second
)

// Keeper holds a session open while a user is active. It runs a liveness
// poll of /auth/status and a keep-alive refresh as two independent loops.
// Individual failures are logged and retried on the next tick.
type Keeper struct {
	client          *Client
	StatusInterval  time.Duration
	RefreshInterval time.Duration
	// OnSignedOut is called whenever a status poll reports no session.
	OnSignedOut func()
	logger      *slog.Logger
}

func NewKeeper(c *Client, onSignedOut func(), logger *slog.Logger) *Keeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Keeper{
		client:          c,
		StatusInterval:  DefaultStatusInterval,
		RefreshInterval: DefaultRefreshInterval,
		OnSignedOut:     onSignedOut,
		logger:          logger,
	}
}

// Run blocks until ctx is done.
func (k *Keeper) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		k.loop(ctx, k.StatusInterval, k.checkStatus)
	}()
	go func() {
		defer wg.Done()
		k.loop(ctx, k.RefreshInterval, k.refresh)
	}()
	wg.Wait()
}

func (k *Keeper) loop(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

func (k *Keeper) checkStatus(ctx context.Context) {
	st, err := k.client.Status(ctx)
	if err != nil {
		if ctx.Err() == nil {
			k.logger.Warn("session status check failed", "error", err)
		}
		return
	}
	if !st.Authenticated && k.OnSignedOut != nil {
		k.OnSignedOut()
	}
}

func (k *Keeper) refresh(ctx context.Context) {
	if _, err := k.client.Refresh(ctx); err != nil && ctx.Err() == nil {
		k.logger.Debug("session keep-alive failed", "error", err)
	}
}
