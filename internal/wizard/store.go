package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrMiss = errors.New("wizard session miss")

// Key addresses one visitor session of one funnel.
type Key struct {
	Tenant  string
	Funnel  string
	Session string
}

func (k Key) String() string {
	return fmt.Sprintf("onboard:wizard:%s:%s:%s", k.Tenant, k.Funnel, k.Session)
}

// Store persists wizards between requests.
type Store interface {
	// Load returns ErrMiss when the session has no wizard yet.
	Load(ctx context.Context, key Key) (*Wizard, error)
	// Update runs fn on the stored wizard (or a new one) and saves the
	// result when fn returns nil. Concurrent updates of one key are
	// serialized; a lost race returns ErrBusy.
	Update(ctx context.Context, key Key, fn func(w *Wizard) error) (*Wizard, error)
}

// LoadOrNew returns the stored wizard, or a fresh one on ErrMiss.
func LoadOrNew(ctx context.Context, s Store, key Key) (*Wizard, error) {
	w, err := s.Load(ctx, key)
	if errors.Is(err, ErrMiss) {
		return New(), nil
	}
	return w, err
}

type RedisStore struct {
	c   *redis.Client
	ttl time.Duration
}

func NewRedisStore(c *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{c: c, ttl: ttl}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Load(ctx context.Context, key Key) (*Wizard, error) {
	return decode(s.c.Get(ctx, key.String()))
}

func (s *RedisStore) Update(ctx context.Context, key Key, fn func(w *Wizard) error) (*Wizard, error) {
	k := key.String()
	var out *Wizard
	err := s.c.Watch(ctx, func(tx *redis.Tx) error {
		w, err := decode(tx.Get(ctx, k))
		if errors.Is(err, ErrMiss) {
			w = New()
		} else if err != nil {
			return err
		}
		if err := fn(w); err != nil {
			return err
		}
		raw, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("encode wizard: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, raw, s.ttl)
			return nil
		})
		out = w
		return err
	}, k)
	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decode(cmd *redis.StringCmd) (*Wizard, error) {
	raw, err := cmd.Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrMiss
		}
		return nil, err
	}
	var w Wizard
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode wizard: %w", err)
	}
	if w.Responses == nil {
		w.Responses = map[string]any{}
	}
	return &w, nil
}

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

// MemoryStore keeps wizards in process. Values are stored encoded so callers
// never share maps with the store.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: map[string]memoryEntry{}}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Load(_ context.Context, key Key) (*Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(key.String())
}

func (s *MemoryStore) Update(_ context.Context, key Key, fn func(w *Wizard) error) (*Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key.String()
	w, err := s.get(k)
	if errors.Is(err, ErrMiss) {
		w = New()
	} else if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode wizard: %w", err)
	}
	entry := memoryEntry{raw: raw}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}
	s.entries[k] = entry
	return w, nil
}

func (s *MemoryStore) get(k string) (*Wizard, error) {
	e, ok := s.entries[k]
	if !ok {
		return nil, ErrMiss
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		delete(s.entries, k)
		return nil, ErrMiss
	}
	var w Wizard
	if err := json.Unmarshal(e.raw, &w); err != nil {
		return nil, fmt.Errorf("decode wizard: %w", err)
	}
	if w.Responses == nil {
		w.Responses = map[string]any{}
	}
	return &w, nil
}
