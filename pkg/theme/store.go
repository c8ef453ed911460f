package theme

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// MemoryStore keeps values for the lifetime of the process.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() (s *MemoryStore) {
	s = &MemoryStore{values: make(map[string]string)}
	return s
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) (value string, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, found = s.values[key]
	return value, found, err
}

// Set stores value under key.
func (s *MemoryStore) Set(_ context.Context, key, value string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return err
}

// FileStore persists values as a JSON object in a single file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the file at path. The file is created on first Set.
func NewFileStore(path string) (s *FileStore, err error) {
	if path == "" {
		err = errors.New("state file path is required")
		return s, err
	}
	s = &FileStore{path: path}
	return s, err
}

// Get returns the value stored under key.
func (s *FileStore) Get(_ context.Context, key string) (value string, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var values map[string]string
	values, err = s.load()
	if err != nil {
		return value, found, err
	}
	value, found = values[key]
	return value, found, err
}

// Set stores value under key, keeping the other keys in the file.
func (s *FileStore) Set(_ context.Context, key, value string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var values map[string]string
	values, err = s.load()
	if err != nil {
		return err
	}
	values[key] = value

	var data []byte
	data, err = json.MarshalIndent(values, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal state")
		return err
	}

	dir := filepath.Dir(s.path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create state directory: %s", dir)
		return err
	}

	tmp := s.path + ".tmp"
	err = os.WriteFile(tmp, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write state file: %s", tmp)
		return err
	}

	err = os.Rename(tmp, s.path)
	if err != nil {
		err = errors.Wrapf(err, "failed to replace state file: %s", s.path)
		return err
	}

	return err
}

func (s *FileStore) load() (values map[string]string, err error) {
	values = make(map[string]string)

	var data []byte
	data, err = os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			err = nil
			return values, err
		}
		err = errors.Wrapf(err, "failed to read state file: %s", s.path)
		return values, err
	}

	if len(data) == 0 {
		return values, err
	}

	err = json.Unmarshal(data, &values)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse state file: %s", s.path)
		return values, err
	}

	return values, err
}

// RedisStore keeps values in redis under a common key prefix.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store on an existing redis client.
func NewRedisStore(client redis.UniversalClient, prefix string) (s *RedisStore) {
	s = &RedisStore{
		client: client,
		prefix: prefix,
	}
	return s
}

// DialRedis connects to redis at addr and verifies the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (client *redis.Client, err error) {
	client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()
		err = errors.Wrapf(err, "failed to connect to redis at %s", addr)
		return client, err
	}

	return client, err
}

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) (value string, found bool, err error) {
	value, err = s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		err = nil
		return value, found, err
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to read %s from redis", key)
		return value, found, err
	}
	found = true
	return value, found, err
}

// Set stores value under key without expiry.
func (s *RedisStore) Set(ctx context.Context, key, value string) (err error) {
	err = s.client.Set(ctx, s.prefix+key, value, 0).Err()
	if err != nil {
		err = errors.Wrapf(err, "failed to write %s to redis", key)
		return err
	}
	return err
}
