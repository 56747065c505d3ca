package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/disaster_routing_system/internal/models"
	"github.com/shenikar/disaster_routing_system/internal/service"
)

const incidentCacheTTL = 5 * time.Minute

const incidentColumns = `
	id,
	type,
	severity,
	credibility,
	status,
	ST_Y(location::geometry) as latitude,
	ST_X(location::geometry) as longitude,
	start_time,
	end_time,
	created_at,
	updated_at,
	signal_id
`

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client) service.IncidentStore {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
	}
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	err := row.Scan(
		&incident.ID,
		&incident.Type,
		&incident.Severity,
		&incident.Credibility,
		&incident.Status,
		&incident.Latitude,
		&incident.Longitude,
		&incident.StartTime,
		&incident.EndTime,
		&incident.CreatedAt,
		&incident.UpdatedAt,
		&incident.SignalID,
	)
	if err != nil {
		return nil, err
	}
	return incident, nil
}

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (type, severity, credibility, status, location, start_time, end_time, signal_id)
		VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326), $7, $8, $9)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		incident.Type,
		incident.Severity,
		incident.Credibility,
		incident.Status,
		incident.Longitude,
		incident.Latitude,
		incident.StartTime,
		incident.EndTime,
		incident.SignalID,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE id = $1;`, incidentColumns)
	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s not found: %w", id, service.ErrIncidentNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// Update обновляет все изменяемые поля инцидента
func (r *IncidentRepository) Update(ctx context.Context, incident *models.Incident) error {
	query := `
		UPDATE incidents SET
			type = $1,
			severity = $2,
			credibility = $3,
			status = $4,
			location = ST_SetSRID(ST_MakePoint($5, $6), 4326),
			start_time = $7,
			end_time = $8,
			updated_at = NOW()
		WHERE id = $9;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		incident.Type,
		incident.Severity,
		incident.Credibility,
		incident.Status,
		incident.Longitude,
		incident.Latitude,
		incident.StartTime,
		incident.EndTime,
		incident.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for update: %w", incident.ID, service.ErrIncidentNotFound)
	}
	return nil
}

// UpdateStatus переводит инцидент в новый статус (модерация: verified/dismissed)
func (r *IncidentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE incidents SET
			status = $1,
			updated_at = NOW()
		WHERE id = $2;
	`
	cmdTag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update incident status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for status update: %w", id, service.ErrIncidentNotFound)
	}
	return nil
}

// FindActiveByTypeSince возвращает активные (не dismissed) инциденты заданного типа,
// созданные не раньше since. Порядок created_at ASC стабилен: первый элемент -
// кандидат на выживание при слиянии.
func (r *IncidentRepository) FindActiveByTypeSince(ctx context.Context, incidentType string, since time.Time) ([]*models.Incident, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM incidents
		WHERE type = $1
			AND status != 'dismissed'
			AND created_at >= $2
		ORDER BY created_at ASC;
	`, incidentColumns)

	rows, err := r.db.Query(ctx, query, incidentType, since)
	if err != nil {
		return nil, fmt.Errorf("failed to find incidents by type since: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row in FindActiveByTypeSince: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in FindActiveByTypeSince: %w", err)
	}
	return incidents, nil
}

// ListActive возвращает все активные инциденты для оценки маршрутов
func (r *IncidentRepository) ListActive(ctx context.Context) ([]*models.Incident, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM incidents
		WHERE status != 'dismissed'
		ORDER BY created_at DESC;
	`, incidentColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row in ListActive: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in ListActive: %w", err)
	}
	return incidents, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (r *IncidentRepository) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error) {
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s FROM incidents
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2;
	`, incidentColumns)

	rows, err := r.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// MergeInto применяет результат слияния в одной транзакции: обновляет выжившую
// строку и удаляет поглощённые дубликаты. Одна транзакция на слияние сериализует
// конкурирующие read-modify-write по одному инциденту.
func (r *IncidentRepository) MergeInto(ctx context.Context, survivor *models.Incident, absorbed []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin merge transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE incidents SET
			severity = $1,
			credibility = $2,
			location = ST_SetSRID(ST_MakePoint($3, $4), 4326),
			start_time = $5,
			updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at;
	`
	err = tx.QueryRow(ctx, query,
		survivor.Severity,
		survivor.Credibility,
		survivor.Longitude,
		survivor.Latitude,
		survivor.StartTime,
		survivor.ID,
	).Scan(&survivor.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update merge survivor: %w", err)
	}

	if len(absorbed) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM incidents WHERE id = ANY($1);`, absorbed); err != nil {
			return fmt.Errorf("failed to delete absorbed duplicates: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit merge transaction: %w", err)
	}
	return nil
}

// GetIncidentFromCache пытается получить инцидент из Redis
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	key := fmt.Sprintf("incident:%s", id.String())
	val, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// SetIncidentCache сохраняет инцидент в Redis
func (r *IncidentRepository) SetIncidentCache(ctx context.Context, incident *models.Incident) error {
	key := fmt.Sprintf("incident:%s", incident.ID.String())
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, key, val, incidentCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

// InvalidateIncidentCache удаляет инцидент из Redis кэша
func (r *IncidentRepository) InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error {
	key := fmt.Sprintf("incident:%s", id.String())
	if err := r.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}
