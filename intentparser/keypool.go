package intentparser

import "sync"

// KeyPool holds an ordered list of AI provider API keys with a cursor
// selecting the current one. Rotation advances the cursor round-robin and is
// guarded by a mutex so concurrent sessions sharing a parser cannot race
// past each other.
type KeyPool struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// NewKeyPool creates a key pool from the given keys. Empty keys are dropped.
func NewKeyPool(keys []string) *KeyPool {
	filtered := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			filtered = append(filtered, k)
		}
	}
	return &KeyPool{keys: filtered}
}

// Empty reports whether the pool holds no keys.
func (p *KeyPool) Empty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys) == 0
}

// Size returns the number of keys in the pool.
func (p *KeyPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// Current returns the key the cursor points at, or an empty string when the
// pool is empty.
func (p *KeyPool) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return ""
	}
	return p.keys[p.cursor]
}

// Rotate advances the cursor to the next key round-robin and returns it.
func (p *KeyPool) Rotate() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return ""
	}
	p.cursor = (p.cursor + 1) % len(p.keys)
	return p.keys[p.cursor]
}
