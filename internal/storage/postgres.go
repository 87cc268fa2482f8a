package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/xaenox/datadonation/internal/models"
	"go.uber.org/zap"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c DatabaseConfig) connString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(ctx context.Context, config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", config.connString())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	if err := storage.initializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("dbname", config.DBName))
	return storage, nil
}

func (s *PostgresStorage) initializeSchema(ctx context.Context) error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Donate(ctx context.Context, key, payload string) error {
	return s.SaveDonation(ctx, newDonation(key, payload))
}

func (s *PostgresStorage) SaveDonation(ctx context.Context, donation *models.Donation) error {
	query := `
		INSERT INTO donations (id, key, payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET id = $1, payload = $3, created_at = $4`

	_, err := s.db.ExecContext(ctx, query, donation.ID, donation.Key, donation.Payload, donation.CreatedAt)
	if err != nil {
		s.logger.Error("Failed to save donation", zap.Error(err), zap.String("key", donation.Key))
		return fmt.Errorf("error saving donation: %w", err)
	}

	s.logger.Info("donation saved", zap.String("key", donation.Key), zap.Int("bytes", len(donation.Payload)))
	return nil
}

func (s *PostgresStorage) GetDonation(ctx context.Context, key string) (*models.Donation, error) {
	query := `
		SELECT id, key, payload, created_at
		FROM donations
		WHERE key = $1`

	d := &models.Donation{}
	err := s.db.QueryRowContext(ctx, query, key).Scan(&d.ID, &d.Key, &d.Payload, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying donation: %w", err)
	}
	return d, nil
}

func (s *PostgresStorage) ListDonations(ctx context.Context) ([]*models.Donation, error) {
	query := `
		SELECT id, key, payload, created_at
		FROM donations
		ORDER BY created_at, key`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying donations: %w", err)
	}
	defer rows.Close()

	var donations []*models.Donation
	for rows.Next() {
		d := &models.Donation{}
		if err := rows.Scan(&d.ID, &d.Key, &d.Payload, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning donation: %w", err)
		}
		donations = append(donations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donations: %w", err)
	}
	return donations, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
