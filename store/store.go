// Package store keeps analysis results so they can be fetched again by id.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/maastricht-university/transcript-analyzer/analysis"
	cfg "github.com/maastricht-university/transcript-analyzer/config"
)

// ErrNotFound is returned when no result has the requested id.
var ErrNotFound = errors.New("analysis not found")

// Store persists analysis results.
type Store interface {
	Save(ctx context.Context, res *analysis.AnalysisResult) error
	Get(ctx context.Context, id string) (*analysis.AnalysisResult, error)
	// List returns up to limit results, newest first.
	List(ctx context.Context, limit int) ([]*analysis.AnalysisResult, error)
	Close(ctx context.Context) error
}

// Open builds the store selected by c.Driver.
func Open(ctx context.Context, c cfg.Store) (Store, error) {
	switch c.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "mongo":
		return NewMongo(ctx, c.MongoURI, c.Database, c.Collection)
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Driver)
	}
}

// Memory is a process-local Store.
type Memory struct {
	mu   sync.RWMutex
	byID map[string]*analysis.AnalysisResult
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]*analysis.AnalysisResult)}
}

func (m *Memory) Save(_ context.Context, res *analysis.AnalysisResult) error {
	if res == nil || res.ID == "" {
		return errors.New("store: result has no id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[res.ID] = res
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*analysis.AnalysisResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return res, nil
}

func (m *Memory) List(_ context.Context, limit int) ([]*analysis.AnalysisResult, error) {
	m.mu.RLock()
	out := make([]*analysis.AnalysisResult, 0, len(m.byID))
	for _, r := range m.byID {
		out = append(out, r)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close(context.Context) error { return nil }
