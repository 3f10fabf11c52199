// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fundtrack/fundtrack-core/internal/domain/entities"
)

// NameVariator is a mock implementation of ports.NameVariator. It is safe
// for concurrent use; the resolver fans calls out across goroutines.
type NameVariator struct {
	// Variants maps fund name to the variations returned for it.
	Variants map[string][]string
	// FailFor lists names whose calls fail.
	FailFor map[string]bool
	// DelayFor blocks a name's call for the given duration, or until the
	// context expires, whichever comes first.
	DelayFor map[string]time.Duration

	mu    sync.Mutex
	calls []string
}

// Variations returns the configured variants or an error.
func (m *NameVariator) Variations(ctx context.Context, name string) (*entities.NameVariants, error) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()

	if d := m.DelayFor[name]; d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.FailFor[name] {
		return nil, errors.New("variation service unavailable")
	}
	return &entities.NameVariants{
		Name:       name,
		Variations: m.Variants[name],
	}, nil
}

// Calls returns every requested name so far.
func (m *NameVariator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
