package repository

import (
	"context"
	"sync"
	"time"

	"xmr_faucet_back/models"
)

const defaultMemoryCapacity = 1000

// JournalMemory keeps the most recent disbursements in process memory.
type JournalMemory struct {
	mu       sync.Mutex
	capacity int
	nextID   int64
	items    []models.Disbursement
}

func NewJournalMemory(capacity int) *JournalMemory {
	return &JournalMemory{capacity: capacity}
}

func (r *JournalMemory) CreateDisbursement(_ context.Context, d models.Disbursement) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	d.ID = r.nextID
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	r.items = append(r.items, d)
	if len(r.items) > r.capacity {
		r.items = r.items[len(r.items)-r.capacity:]
	}
	return d.ID, nil
}

// RecentDisbursements returns up to limit entries, newest first.
func (r *JournalMemory) RecentDisbursements(_ context.Context, limit int) ([]models.Disbursement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Disbursement, 0, limit)
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.items[i])
	}
	return out, nil
}
