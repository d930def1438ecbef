package reports

import (
	"context"
	"sync"
)

type reportKey struct {
	reporterID string
	targetType string
	targetID   string
}

// MemoryRepo is an in-process Repo used in dev and tests.
type MemoryRepo struct {
	mu      sync.Mutex
	reports map[reportKey]Report
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{reports: make(map[reportKey]Report)}
}

func (m *MemoryRepo) Create(ctx context.Context, r Report) (Report, bool, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := reportKey{reporterID: r.ReporterID, targetType: r.TargetType, targetID: r.TargetID}
	if existing, ok := m.reports[key]; ok {
		return existing, false, nil
	}
	m.reports[key] = r
	return r, true, nil
}

func (m *MemoryRepo) CountForTarget(ctx context.Context, targetType, targetID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key := range m.reports {
		if key.targetType == targetType && key.targetID == targetID {
			n++
		}
	}
	return n, nil
}
