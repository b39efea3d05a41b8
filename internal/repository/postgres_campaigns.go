package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dealinefunnel/countdown-service/internal/database"
	"github.com/dealinefunnel/countdown-service/internal/models"
	"github.com/dealinefunnel/countdown-service/internal/service"
)

// PostgresCampaignRepository implements service.CampaignRepository using PostgreSQL
type PostgresCampaignRepository struct {
	db *database.DB
}

// NewPostgresCampaignRepository creates a new PostgreSQL campaign repository
func NewPostgresCampaignRepository(db *database.DB) service.CampaignRepository {
	return &PostgresCampaignRepository{db: db}
}

const campaignColumns = `id, title, type, duration_minutes, fixed_deadline, target_urls, expiration_action, styles, created_at, updated_at`

// GetByID retrieves one campaign by id
func (r *PostgresCampaignRepository) GetByID(ctx context.Context, id string) (models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	campaign, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return models.Campaign{}, mapStoreError(fmt.Errorf("failed to query campaign %s: %w", id, err))
	}
	return campaign, nil
}

// List retrieves all campaigns, newest first
func (r *PostgresCampaignRepository) List(ctx context.Context) ([]models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapStoreError(fmt.Errorf("failed to query campaigns: %w", err))
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, mapStoreError(fmt.Errorf("failed to scan campaign: %w", err))
		}
		campaigns = append(campaigns, campaign)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStoreError(fmt.Errorf("error iterating over campaign rows: %w", err))
	}

	return campaigns, nil
}

// Create inserts a new campaign and returns the stored row
func (r *PostgresCampaignRepository) Create(ctx context.Context, campaign models.Campaign) (models.Campaign, error) {
	if campaign.ID == "" {
		campaign.ID = uuid.New().String()
	}

	query := `
		INSERT INTO campaigns (id, title, type, duration_minutes, fixed_deadline, target_urls, expiration_action, styles)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + campaignColumns

	row := r.db.QueryRowContext(ctx, query,
		campaign.ID,
		campaign.Title,
		campaign.Type,
		campaign.DurationMinutes,
		campaign.FixedDeadline,
		pq.Array(campaign.TargetURLs),
		campaign.ExpirationAction,
		campaign.Styles,
	)

	stored, err := scanCampaign(row)
	if err != nil {
		return models.Campaign{}, mapStoreError(fmt.Errorf("failed to insert campaign: %w", err))
	}
	return stored, nil
}

// Update rewrites a campaign's configuration and returns the stored row
func (r *PostgresCampaignRepository) Update(ctx context.Context, campaign models.Campaign) (models.Campaign, error) {
	query := `
		UPDATE campaigns
		SET title = $2, type = $3, duration_minutes = $4, fixed_deadline = $5,
		    target_urls = $6, expiration_action = $7, styles = $8, updated_at = now()
		WHERE id = $1
		RETURNING ` + campaignColumns

	row := r.db.QueryRowContext(ctx, query,
		campaign.ID,
		campaign.Title,
		campaign.Type,
		campaign.DurationMinutes,
		campaign.FixedDeadline,
		pq.Array(campaign.TargetURLs),
		campaign.ExpirationAction,
		campaign.Styles,
	)

	stored, err := scanCampaign(row)
	if err != nil {
		return models.Campaign{}, mapStoreError(fmt.Errorf("failed to update campaign %s: %w", campaign.ID, err))
	}
	return stored, nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (models.Campaign, error) {
	var campaign models.Campaign
	var duration sql.NullInt32
	var fixedDeadline sql.NullTime
	var targetURLs pq.StringArray

	err := row.Scan(
		&campaign.ID,
		&campaign.Title,
		&campaign.Type,
		&duration,
		&fixedDeadline,
		&targetURLs,
		&campaign.ExpirationAction,
		&campaign.Styles,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if err != nil {
		return models.Campaign{}, err
	}

	if duration.Valid {
		minutes := int(duration.Int32)
		campaign.DurationMinutes = &minutes
	}
	if fixedDeadline.Valid {
		deadline := fixedDeadline.Time
		campaign.FixedDeadline = &deadline
	}
	campaign.TargetURLs = targetURLs

	return campaign, nil
}

// mapStoreError translates driver errors into the service taxonomy: missing
// rows are ErrNotFound, everything else is a transient store failure
func mapStoreError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return service.ErrNotFound
	}
	return service.NewStoreUnavailable(err)
}
