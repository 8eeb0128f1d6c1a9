// Package keypool provides round-robin rotation over a list of API keys.
package keypool

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrExhaustedPool is returned by Next when the pool holds no keys.
var ErrExhaustedPool = errors.New("keypool: no keys available")

// Pool rotates over an ordered set of opaque secret keys. The key list is
// immutable after construction; only the cursor moves. Not safe for
// concurrent use; callers drive it from a single logical flow.
type Pool struct {
	keys   []string
	cursor int
}

// New builds a pool from the given keys, dropping empty entries.
func New(keys []string) *Pool {
	kept := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(k) != "" {
			kept = append(kept, strings.TrimSpace(k))
		}
	}
	return &Pool{keys: kept}
}

// Load reads one key per line from path, skipping blank lines.
func Load(path string) (*Pool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	defer f.Close()

	var keys []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		keys = append(keys, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return New(keys), nil
}

// Next returns the key at the cursor and advances the cursor circularly.
func (p *Pool) Next() (string, error) {
	if len(p.keys) == 0 {
		return "", ErrExhaustedPool
	}
	key := p.keys[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.keys)
	return key, nil
}

// Len reports the number of keys in the pool.
func (p *Pool) Len() int {
	return len(p.keys)
}
