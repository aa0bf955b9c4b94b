// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cover

import (
	"context"
	"sync"
)

// MemoryStore keeps cover bytes in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[Handle]Blob
}

// NewMemoryStore creates an empty in-memory cover store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[Handle]Blob)}
}

// Create stores blob under a new handle.
func (store *MemoryStore) Create(_ context.Context, blob Blob) (Handle, error) {
	handle := NewHandle()

	store.mu.Lock()
	store.blobs[handle] = blob
	store.mu.Unlock()

	return handle, nil
}

// Open returns a copy-free view of the stored blob. Callers must not mutate Data.
func (store *MemoryStore) Open(_ context.Context, handle Handle) (*Blob, error) {
	store.mu.RLock()
	blob, ok := store.blobs[handle]
	store.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return &blob, nil
}

// Release drops the blob behind handle.
func (store *MemoryStore) Release(_ context.Context, handle Handle) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.blobs[handle]; !ok {
		return ErrNotFound
	}
	delete(store.blobs, handle)
	return nil
}

// Len reports how many handles are currently live.
func (store *MemoryStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.blobs)
}
