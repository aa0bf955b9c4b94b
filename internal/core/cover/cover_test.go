// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cover_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookshelf/internal/core/cover"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

/*
TestNewBlob sniffs the bytes first and trusts the declared type only as a fallback.
*/
func TestNewBlob(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		data     []byte
		want     string
	}{
		{"sniffed_png", "image/jpeg", pngHeader, "image/png"},
		{"declared_when_unknown", "image/avif", []byte{0x00, 0x01, 0x02}, "image/avif"},
		{"octet_stream_without_declared", "", []byte{0x00, 0x01, 0x02}, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cover.NewBlob(tt.declared, tt.data).ContentType)
		})
	}
}

/*
TestHandle checks that handles are unique URL paths that round-trip through their key.
*/
func TestHandle(t *testing.T) {
	a, b := cover.NewHandle(), cover.NewHandle()

	assert.NotEqual(t, a, b)
	assert.Equal(t, "/covers/"+a.Key(), a.URL())
	assert.Equal(t, a, cover.HandleFromKey(a.Key()))
}

// exerciseStore runs the lifecycle every Store implementation must honour.
func exerciseStore(t *testing.T, store cover.Store) {
	t.Helper()
	ctx := context.Background()

	handle, err := store.Create(ctx, cover.NewBlob("", pngHeader).WithFilename("cover.png"))
	require.NoError(t, err)

	blob, err := store.Open(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, "image/png", blob.ContentType)
	assert.Equal(t, pngHeader, blob.Data)
	assert.Equal(t, "cover.png", blob.Filename)

	require.NoError(t, store.Release(ctx, handle))

	_, err = store.Open(ctx, handle)
	assert.ErrorIs(t, err, cover.ErrNotFound)

	// A released handle cannot be released again
	assert.ErrorIs(t, store.Release(ctx, handle), cover.ErrNotFound)
}

/*
TestMemoryStore_Lifecycle creates, opens and releases a cover.
*/
func TestMemoryStore_Lifecycle(t *testing.T) {
	store := cover.NewMemoryStore()
	exerciseStore(t, store)
	assert.Equal(t, 0, store.Len())
}

/*
TestRedisStore_Lifecycle runs the same lifecycle against a live Redis.

It is skipped unless REDIS_URL points at a disposable instance.
*/
func TestRedisStore_Lifecycle(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	options, err := redis.ParseURL(redisURL)
	require.NoError(t, err)

	client := redis.NewClient(options)
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, cover.NewRedisStore(client, time.Minute))
}

/*
TestRedisStore_OpenRefreshesTTL keeps a cover alive for as long as it is being read.

It is skipped unless REDIS_URL points at a disposable instance.
*/
func TestRedisStore_OpenRefreshesTTL(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}

	options, err := redis.ParseURL(redisURL)
	require.NoError(t, err)

	client := redis.NewClient(options)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := cover.NewRedisStore(client, time.Hour)

	handle, err := store.Create(ctx, cover.NewBlob("", pngHeader))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Release(ctx, handle) })

	// Pretend the cover is about to expire
	key := constants.RedisPrefixCover + handle.Key()
	require.NoError(t, client.Expire(ctx, key, 5*time.Second).Err())

	_, err = store.Open(ctx, handle)
	require.NoError(t, err)

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 30*time.Minute)

	// Reading a released cover must not resurrect its key
	require.NoError(t, store.Release(ctx, handle))
	_, err = store.Open(ctx, handle)
	assert.ErrorIs(t, err, cover.ErrNotFound)

	exists, err := client.Exists(ctx, key).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

/*
TestHandler_GetCover serves live handles and 404s released ones.
*/
func TestHandler_GetCover(t *testing.T) {
	store := cover.NewMemoryStore()
	router := cover.NewHandler(store).Routes()

	handle, err := store.Create(context.Background(), cover.NewBlob("", pngHeader).WithFilename("Dune Première.PNG"))
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/"+handle.Key(), nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "image/png", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, `inline; filename=dune-premiere.png`, recorder.Header().Get("Content-Disposition"))
	assert.Equal(t, pngHeader, recorder.Body.Bytes())

	require.NoError(t, store.Release(context.Background(), handle))

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/"+handle.Key(), nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
