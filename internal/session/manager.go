// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/bookshelf/pkg/uuid"
)

// Factory builds a fresh workspace for a new session id.
type Factory func(id string) *Workspace

type tracked struct {
	workspace *Workspace
	lastSeen  time.Time
}

// Manager owns every live workspace and evicts idle ones.
type Manager struct {
	mu         sync.Mutex
	workspaces map[string]*tracked
	idleTTL    time.Duration
	factory    Factory
	logger     *slog.Logger
	now        func() time.Time
}

// NewManager creates a manager that evicts workspaces idle for longer than idleTTL.
func NewManager(idleTTL time.Duration, factory Factory, logger *slog.Logger) *Manager {
	return &Manager{
		workspaces: make(map[string]*tracked),
		idleTTL:    idleTTL,
		factory:    factory,
		logger:     logger,
		now:        time.Now,
	}
}

/*
Resolve returns the workspace for id, creating one when id is unknown.

Description: An unknown id (empty, expired or from a previous process) never
revives old state; a brand new session id is minted instead.

Returns:
  - *Workspace: The workspace to serve the request from
  - bool: Whether it was created by this call
*/
func (manager *Manager) Resolve(id string) (*Workspace, bool) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	now := manager.now()
	if current, ok := manager.workspaces[id]; ok {
		current.lastSeen = now
		return current.workspace, false
	}

	workspace := manager.factory(uuid.New())
	manager.workspaces[workspace.ID()] = &tracked{workspace: workspace, lastSeen: now}

	manager.logger.Info("session_created",
		slog.String("session_id", workspace.ID()),
		slog.Int("sessions", len(manager.workspaces)),
	)
	return workspace, true
}

/*
Sweep evicts every workspace idle since before now minus the idle TTL.

Description: Evicted workspaces are closed outside the manager lock so a slow
cover store never blocks new sessions.

Returns:
  - int: Number of evicted workspaces
*/
func (manager *Manager) Sweep(ctx context.Context, now time.Time) int {
	manager.mu.Lock()
	var evicted []*Workspace
	for id, current := range manager.workspaces {
		if now.Sub(current.lastSeen) > manager.idleTTL {
			evicted = append(evicted, current.workspace)
			delete(manager.workspaces, id)
		}
	}
	manager.mu.Unlock()

	for _, workspace := range evicted {
		if err := workspace.Close(ctx); err != nil {
			manager.logger.Warn("session_close_failed", slog.String("session_id", workspace.ID()), slog.Any("error", err))
			continue
		}
		manager.logger.Info("session_evicted", slog.String("session_id", workspace.ID()))
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done.
func (manager *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.Sweep(ctx, manager.now())
		}
	}
}

// Close closes every workspace. Used at shutdown.
func (manager *Manager) Close(ctx context.Context) error {
	manager.mu.Lock()
	all := manager.workspaces
	manager.workspaces = make(map[string]*tracked)
	manager.mu.Unlock()

	var errs []error
	for _, current := range all {
		errs = append(errs, current.workspace.Close(ctx))
	}
	return errors.Join(errs...)
}

// Len returns the number of live workspaces.
func (manager *Manager) Len() int {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	return len(manager.workspaces)
}
