package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/dealinefunnel/countdown-service/internal/database"
	"github.com/dealinefunnel/countdown-service/internal/models"
	"github.com/dealinefunnel/countdown-service/internal/service"
)

// PostgresVisitorRepository implements service.VisitorRepository using PostgreSQL
type PostgresVisitorRepository struct {
	db *database.DB
}

// NewPostgresVisitorRepository creates a new PostgreSQL visitor repository
func NewPostgresVisitorRepository(db *database.DB) service.VisitorRepository {
	return &PostgresVisitorRepository{db: db}
}

// GetByKey retrieves the visitor row for one (visitor_id, campaign_id) pair
func (r *PostgresVisitorRepository) GetByKey(ctx context.Context, visitorID, campaignID string) (models.Visitor, error) {
	query := `
		SELECT visitor_id, campaign_id, ip_address, COALESCE(fingerprint, ''), deadline, created_at, last_seen
		FROM visitors
		WHERE visitor_id = $1 AND campaign_id = $2
	`

	var visitor models.Visitor
	err := r.db.QueryRowContext(ctx, query, visitorID, campaignID).Scan(
		&visitor.VisitorID,
		&visitor.CampaignID,
		&visitor.IPAddress,
		&visitor.Fingerprint,
		&visitor.Deadline,
		&visitor.CreatedAt,
		&visitor.LastSeen,
	)
	if err != nil {
		return models.Visitor{}, mapStoreError(fmt.Errorf("failed to query visitor %s/%s: %w", visitorID, campaignID, err))
	}
	return visitor, nil
}

// Upsert writes the visitor row keyed on (visitor_id, campaign_id). Racing
// first visits deterministically keep one row, last write wins; the stored
// row is returned so callers always see the winner's deadline.
func (r *PostgresVisitorRepository) Upsert(ctx context.Context, visitor models.Visitor) (models.Visitor, error) {
	query := `
		INSERT INTO visitors (visitor_id, campaign_id, ip_address, fingerprint, deadline, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (visitor_id, campaign_id)
		DO UPDATE SET deadline = EXCLUDED.deadline, last_seen = EXCLUDED.last_seen
		RETURNING visitor_id, campaign_id, ip_address, COALESCE(fingerprint, ''), deadline, created_at, last_seen
	`

	var stored models.Visitor
	err := r.db.QueryRowContext(ctx, query,
		visitor.VisitorID,
		visitor.CampaignID,
		visitor.IPAddress,
		visitor.Fingerprint,
		visitor.Deadline,
		visitor.LastSeen,
	).Scan(
		&stored.VisitorID,
		&stored.CampaignID,
		&stored.IPAddress,
		&stored.Fingerprint,
		&stored.Deadline,
		&stored.CreatedAt,
		&stored.LastSeen,
	)
	if err != nil {
		return models.Visitor{}, mapStoreError(fmt.Errorf("failed to upsert visitor %s/%s: %w", visitor.VisitorID, visitor.CampaignID, err))
	}
	return stored, nil
}

// TouchLastSeen bumps last_seen for a visitor. Callers treat failures as
// non-fatal; a missing row is silently ignored.
func (r *PostgresVisitorRepository) TouchLastSeen(ctx context.Context, visitorID, campaignID string, seen time.Time) error {
	query := `UPDATE visitors SET last_seen = $3 WHERE visitor_id = $1 AND campaign_id = $2`

	if _, err := r.db.ExecContext(ctx, query, visitorID, campaignID, seen); err != nil {
		return mapStoreError(fmt.Errorf("failed to touch visitor %s/%s: %w", visitorID, campaignID, err))
	}
	return nil
}

// LatestByVisitorID retrieves the visitor's most recently seen row joined
// with its campaign, for the combined lookup
func (r *PostgresVisitorRepository) LatestByVisitorID(ctx context.Context, visitorID string) (models.VisitorWithCampaign, error) {
	query := `
		SELECT v.visitor_id, v.campaign_id, v.ip_address, COALESCE(v.fingerprint, ''), v.deadline, v.created_at, v.last_seen,
		       c.id, c.title, c.type, c.styles, c.target_urls
		FROM visitors v
		JOIN campaigns c ON c.id = v.campaign_id
		WHERE v.visitor_id = $1
		ORDER BY v.last_seen DESC
		LIMIT 1
	`

	var visitor models.VisitorWithCampaign
	var campaign models.CampaignSummary
	var targetURLs pq.StringArray

	err := r.db.QueryRowContext(ctx, query, visitorID).Scan(
		&visitor.VisitorID,
		&visitor.CampaignID,
		&visitor.IPAddress,
		&visitor.Fingerprint,
		&visitor.Deadline,
		&visitor.CreatedAt,
		&visitor.LastSeen,
		&campaign.ID,
		&campaign.Title,
		&campaign.Type,
		&campaign.Styles,
		&targetURLs,
	)
	if err != nil {
		return models.VisitorWithCampaign{}, mapStoreError(fmt.Errorf("failed to query latest visitor %s: %w", visitorID, err))
	}

	campaign.TargetURLs = targetURLs
	visitor.Campaign = &campaign

	return visitor, nil
}

// CreateSession records the audit row for a freshly minted visitor id
func (r *PostgresVisitorRepository) CreateSession(ctx context.Context, session models.VisitorSession) error {
	query := `
		INSERT INTO visitor_sessions (visitor_id, ip_address, user_agent, fingerprint, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.VisitorID,
		session.IPAddress,
		session.UserAgent,
		session.Fingerprint,
		session.CreatedAt,
	)
	if err != nil {
		return mapStoreError(fmt.Errorf("failed to insert visitor session %s: %w", session.VisitorID, err))
	}
	return nil
}
