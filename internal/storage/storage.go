package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/datadonation/internal/models"
)

var ErrNotFound = errors.New("donation not found")

// Storage keeps donated data. Donating twice under the same key replaces the
// earlier payload.
type Storage interface {
	Donate(ctx context.Context, key, payload string) error
	SaveDonation(ctx context.Context, donation *models.Donation) error
	GetDonation(ctx context.Context, key string) (*models.Donation, error)
	ListDonations(ctx context.Context) ([]*models.Donation, error)
	Close() error
}

func newDonation(key, payload string) *models.Donation {
	return &models.Donation{
		ID:        uuid.New().String(),
		Key:       key,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}
