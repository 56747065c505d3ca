package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/disaster_routing_system/internal/models"
	"github.com/shenikar/disaster_routing_system/internal/service"
)

type SignalRepository struct {
	db *pgxpool.Pool
}

func NewSignalRepository(db *pgxpool.Pool) service.SignalStore {
	return &SignalRepository{db: db}
}

// Create сохраняет сырой сигнал в бд
func (r *SignalRepository) Create(ctx context.Context, signal *models.Signal) error {
	query := `
		INSERT INTO signals (text, source_type, source_url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		signal.Text,
		signal.SourceType,
		signal.SourceURL,
	).Scan(&signal.ID, &signal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create signal: %w", err)
	}
	return nil
}

// GetByID возвращает сигнал по его UUID
func (r *SignalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Signal, error) {
	signal := &models.Signal{}
	query := `
		SELECT id, text, source_type, source_url, created_at
		FROM signals
		WHERE id = $1;
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&signal.ID,
		&signal.Text,
		&signal.SourceType,
		&signal.SourceURL,
		&signal.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("signal with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to get signal by id: %w", err)
	}
	return signal, nil
}
