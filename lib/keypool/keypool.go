package keypool

import (
	"errors"
	"sync"
)

var ErrNoKeys = errors.New("keypool: no api keys provided")

// ErrExhausted is returned by Acquire once every key in the pool has
// been marked quota-exhausted. Callers treat it as "stop submitting
// work and checkpoint", not as a per-request failure.
var ErrExhausted = errors.New("keypool: all api keys exhausted")

// Pool hands out API keys and tracks which ones have hit their quota.
// It replaces the usual module-level "current key index" with a value
// that is passed explicitly to each client that needs credentials.
type Pool struct {
	mu        sync.Mutex
	keys      []string
	exhausted map[string]bool
	current   int
}

func New(keys []string) (*Pool, error) {
	filtered := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			filtered = append(filtered, k)
		}
	}
	if len(filtered) == 0 {
		return nil, ErrNoKeys
	}
	return &Pool{
		keys:      filtered,
		exhausted: make(map[string]bool),
	}, nil
}

// Acquire returns a key that has not been marked exhausted. It keeps
// returning the same key until that key is exhausted, then rotates.
func (p *Pool) Acquire() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for range p.keys {
		key := p.keys[p.current]
		if !p.exhausted[key] {
			return key, nil
		}
		p.current = (p.current + 1) % len(p.keys)
	}
	return "", ErrExhausted
}

// MarkExhausted records that key hit its quota. Unknown keys are
// ignored.
func (p *Pool) MarkExhausted(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range p.keys {
		if k == key {
			p.exhausted[key] = true
			return
		}
	}
}

// Remaining returns how many keys are still usable.
func (p *Pool) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	count := 0
	for _, k := range p.keys {
		if !p.exhausted[k] {
			count++
		}
	}
	return count
}
