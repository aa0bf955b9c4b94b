// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cover

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/bookshelf/internal/platform/constants"
)

// Hash fields of a stored cover.
const (
	fieldContentType = "content_type"
	fieldFilename    = "filename"
	fieldData        = "data"
)

// RedisStore implements [Store] on Redis hashes with a sliding TTL.
//
// Every read pushes the expiry back, so only covers nobody has opened for a
// whole TTL are dropped. Entries still release their covers explicitly on removal.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-backed cover store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

/*
Create writes the blob under a fresh handle.

Parameters:
  - context: context.Context
  - blob: Blob

Returns:
  - Handle: The new handle
  - error: Execution errors
*/
func (store *RedisStore) Create(context context.Context, blob Blob) (Handle, error) {
	handle := NewHandle()
	key := redisKey(handle)

	// Write both fields and the TTL atomically
	_, err := store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.HSet(context, key,
			fieldContentType, blob.ContentType,
			fieldFilename, blob.Filename,
			fieldData, blob.Data,
		)
		pipe.Expire(context, key, store.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("redis_cover_create_failed: %w", err)
	}

	return handle, nil
}

/*
Open reads the blob behind handle.

Description: Returns ErrNotFound if the cover was released or has expired.
A successful read restarts the TTL.

Parameters:
  - context: context.Context
  - handle: Handle

Returns:
  - *Blob: The stored bytes
  - error: ErrNotFound or connectivity errors
*/
func (store *RedisStore) Open(context context.Context, handle Handle) (*Blob, error) {
	key := redisKey(handle)

	// EXPIRE on a missing key is a no-op, so a released cover stays gone
	var read *redis.MapStringStringCmd
	_, err := store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		read = pipe.HGetAll(context, key)
		pipe.Expire(context, key, store.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis_cover_open_failed: %w", err)
	}

	fields := read.Val()

	// HGETALL on a missing key yields an empty map rather than redis.Nil
	data, ok := fields[fieldData]
	if !ok {
		return nil, ErrNotFound
	}

	return &Blob{
		ContentType: fields[fieldContentType],
		Filename:    fields[fieldFilename],
		Data:        []byte(data),
	}, nil
}

/*
Release deletes the blob behind handle.

Parameters:
  - context: context.Context
  - handle: Handle

Returns:
  - error: ErrNotFound when nothing was deleted, or connectivity errors
*/
func (store *RedisStore) Release(context context.Context, handle Handle) error {
	deleted, err := store.client.Del(context, redisKey(handle)).Result()
	if err != nil {
		return fmt.Errorf("redis_cover_release_failed: %w", err)
	}

	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func redisKey(handle Handle) string {
	return constants.RedisPrefixCover + handle.Key()
}
