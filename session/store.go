package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("no session")

type Session struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
)

// Store keeps sessions and their pending flash messages on the server side.
type Store interface {
	Save(ctx context.Context, s Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	PushFlash(ctx context.Context, id string, f Flash) error
	PopFlashes(ctx context.Context, id string) ([]Flash, error)
}

type memEntry struct {
	sess    Session
	flashes []Flash
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memEntry), now: time.Now}
}

// Save stores s and drops every expired entry, so sessions abandoned
// without a logout do not pile up.
func (m *MemoryStore) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	if e, ok := m.entries[s.ID]; ok {
		e.sess = s
		return nil
	}
	m.entries[s.ID] = &memEntry{sess: s}
	return nil
}

// sweep removes expired entries. Caller holds mu.
func (m *MemoryStore) sweep() {
	now := m.now()
	for id, e := range m.entries {
		if !now.Before(e.sess.ExpiresAt) {
			delete(m.entries, id)
		}
	}
}

// lookup returns a live entry, dropping it when expired. Caller holds mu.
func (m *MemoryStore) lookup(id string) (*memEntry, bool) {
	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.sess.ExpiresAt) {
		delete(m.entries, id)
		return nil, false
	}
	return e, true
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(id)
	if !ok {
		return nil, ErrNoSession
	}
	s := e.sess
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *MemoryStore) PushFlash(_ context.Context, id string, f Flash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(id)
	if !ok {
		return ErrNoSession
	}
	e.flashes = append(e.flashes, f)
	return nil
}

func (m *MemoryStore) PopFlashes(_ context.Context, id string) ([]Flash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(id)
	if !ok {
		return nil, nil
	}
	out := e.flashes
	e.flashes = nil
	return out, nil
}

// RedisStore keeps sessions in Redis so several processes can share them.
// A session is a JSON value with a TTL; its flashes are a list that expires
// together with it.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "portfolio:session:"}
}

// NewRedisStoreFromURL parses a redis:// URL and checks the connection.
func NewRedisStoreFromURL(ctx context.Context, rawURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(client), nil
}

func (r *RedisStore) Close() error { return r.client.Close() }

func (r *RedisStore) key(id string) string      { return r.prefix + id }
func (r *RedisStore) flashKey(id string) string { return r.prefix + id + ":flash" }

func (r *RedisStore) Save(ctx context.Context, s Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", s.ID)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(s.ID), b, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	b, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id), r.flashKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *RedisStore) PushFlash(ctx context.Context, id string, f Flash) error {
	ttl, err := r.client.PTTL(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("push flash: %w", err)
	}
	// -2: key missing, -1: no expiry (never written by Save)
	if ttl <= 0 {
		return ErrNoSession
	}
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, r.flashKey(id), b)
		p.PExpire(ctx, r.flashKey(id), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("push flash: %w", err)
	}
	return nil
}

func (r *RedisStore) PopFlashes(ctx context.Context, id string) ([]Flash, error) {
	var lr *redis.StringSliceCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		lr = p.LRange(ctx, r.flashKey(id), 0, -1)
		p.Del(ctx, r.flashKey(id))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pop flashes: %w", err)
	}
	raw := lr.Val()
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]Flash, 0, len(raw))
	for _, item := range raw {
		var f Flash
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}
