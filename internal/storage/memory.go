package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/xaenox/datadonation/internal/models"
)

type MemoryStorage struct {
	mu        sync.RWMutex
	donations map[string]*models.Donation
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		donations: make(map[string]*models.Donation),
	}
}

func (s *MemoryStorage) Donate(ctx context.Context, key, payload string) error {
	return s.SaveDonation(ctx, newDonation(key, payload))
}

func (s *MemoryStorage) SaveDonation(ctx context.Context, donation *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *donation
	s.donations[donation.Key] = &stored
	return nil
}

func (s *MemoryStorage) GetDonation(ctx context.Context, key string) (*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.donations[key]
	if !exists {
		return nil, ErrNotFound
	}
	out := *d
	return &out, nil
}

func (s *MemoryStorage) ListDonations(ctx context.Context) ([]*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Donation, 0, len(s.donations))
	for _, d := range s.donations {
		c := *d
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Key < out[j].Key
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
