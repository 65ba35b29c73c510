// Package store provides RunStore implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/recon-engine/recon"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu   sync.RWMutex
	runs map[string]recon.Run
}

func NewMemory() *Memory {
	return &Memory{runs: make(map[string]recon.Run)}
}

// Save persists a run. Append-only: reusing an id is rejected.
func (m *Memory) Save(_ context.Context, run recon.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; exists {
		return fmt.Errorf("run %q already exists", run.ID)
	}

	// Copy the result slice so later caller mutations can't reach history.
	results := make([]recon.Result, len(run.Results))
	copy(results, run.Results)
	run.Results = results

	m.runs[run.ID] = run
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (recon.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return recon.Run{}, recon.ErrRunNotFound
	}
	results := make([]recon.Result, len(run.Results))
	copy(results, run.Results)
	run.Results = results
	return run, nil
}

// List returns all runs newest-first without result sets.
func (m *Memory) List(_ context.Context) ([]recon.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]recon.Run, 0, len(m.runs))
	for _, run := range m.runs {
		run.Results = nil
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
