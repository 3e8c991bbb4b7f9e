package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PhishGuard/backend/internal/infrastructure/logging"
)

type storeFactory func(t *testing.T) Store

func backends(t *testing.T) map[string]storeFactory {
	b := map[string]storeFactory{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"))
			require.NoError(t, err)
			return s
		},
	}
	if addr := os.Getenv("PHISHGUARD_TEST_REDIS"); addr != "" {
		b["redis"] = func(t *testing.T) Store {
			s, err := DialRedis(context.Background(), RedisOptions{
				Addr:      addr,
				KeyPrefix: "phishguard-test:" + uuid.NewString() + ":",
			}, logging.NewNop())
			require.NoError(t, err)
			return s
		}
	}
	return b
}

func TestStoreContract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			defer s.Close()

			_, ok, err := s.Get(ctx, "client_id")
			require.NoError(t, err)
			assert.False(t, ok)

			got, err := s.SetIfAbsent(ctx, "client_id", "first")
			require.NoError(t, err)
			assert.Equal(t, "first", got)

			got, err = s.SetIfAbsent(ctx, "client_id", "second")
			require.NoError(t, err)
			assert.Equal(t, "first", got, "existing value wins")

			v, ok, err := s.Get(ctx, "client_id")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "first", v)

			require.NoError(t, s.Delete(ctx, "client_id"))
			require.NoError(t, s.Delete(ctx, "client_id"))
			_, ok, err = s.Get(ctx, "client_id")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSetIfAbsentConcurrent(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			defer s.Close()

			const n = 16
			results := make([]string, n)
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					v, err := s.SetIfAbsent(ctx, "k", uuid.NewString())
					assert.NoError(t, err)
					results[i] = v
				}(i)
			}
			wg.Wait()

			for _, r := range results {
				assert.Equal(t, results[0], r)
			}
		})
	}
}

func TestFileStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "identity.json")

	s1, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = s1.SetIfAbsent(ctx, "client_id", "abc")
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok, err := s2.Get(ctx, "client_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, _, err = s.Get(context.Background(), "client_id")
	assert.Error(t, err)
}

func TestClosedStore(t *testing.T) {
	for name, open := range backends(t) {
		if name == "redis" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			s := open(t)
			require.NoError(t, s.Close())
			_, _, err := s.Get(context.Background(), "k")
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{Backend: config.BackendMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	path := filepath.Join(t.TempDir(), "id.json")
	s, err = Open(context.Background(), config.StoreConfig{Backend: config.BackendFile, Path: path}, nil)
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, s)
	assert.Equal(t, path, s.(*FileStore).Path())

	_, err = Open(context.Background(), config.StoreConfig{Backend: "etcd"}, nil)
	assert.Error(t, err)
}
