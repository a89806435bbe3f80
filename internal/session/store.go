package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound reports an absent or fully-cleared session record.
var ErrNotFound = errors.New("session: record not found")

// Record is the persisted shape of one browser session. Phone is stored as a
// plain string and the student snapshot as raw JSON. The snapshot may be
// present while unparseable; the store hands it back as-is and leaves
// self-healing to the caller.
type Record struct {
	Phone    string
	Snapshot []byte
}

// Store persists session records keyed by session id. Save replaces both
// fields atomically so a reader never observes a phone from one login paired
// with a snapshot from another.
type Store interface {
	Load(ctx context.Context, sessionID string) (Record, error)
	Save(ctx context.Context, sessionID string, rec Record) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps each session under two keys, `portal:sess:<id>:phone` and
// `portal:sess:<id>:auth`, written in one transaction with a shared TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a RedisStore. ttl bounds how long an idle session
// survives between visits.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func phoneKey(sessionID string) string { return "portal:sess:" + sessionID + ":phone" }
func authKey(sessionID string) string  { return "portal:sess:" + sessionID + ":auth" }

func (s *RedisStore) Load(ctx context.Context, sessionID string) (Record, error) {
	values, err := s.client.MGet(ctx, phoneKey(sessionID), authKey(sessionID)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("load session: %w", err)
	}
	rec := Record{}
	if phone, ok := values[0].(string); ok {
		rec.Phone = phone
	}
	if auth, ok := values[1].(string); ok {
		rec.Snapshot = []byte(auth)
	}
	if rec.Phone == "" && rec.Snapshot == nil {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, rec Record) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, phoneKey(sessionID), rec.Phone, s.ttl)
	if rec.Snapshot != nil {
		pipe.Set(ctx, authKey(sessionID), string(rec.Snapshot), s.ttl)
	} else {
		pipe.Del(ctx, authKey(sessionID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, phoneKey(sessionID), authKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store for tests and single-node development.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[sessionID]
	if !ok {
		return Record{}, ErrNotFound
	}
	copied := Record{Phone: rec.Phone}
	if rec.Snapshot != nil {
		copied.Snapshot = append([]byte(nil), rec.Snapshot...)
	}
	return copied, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := Record{Phone: rec.Phone}
	if rec.Snapshot != nil {
		stored.Snapshot = append([]byte(nil), rec.Snapshot...)
	}
	s.records[sessionID] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}
