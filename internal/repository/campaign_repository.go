package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	appErrors "github.com/xenolabs/engage-backend/internal/errors"
	"github.com/xenolabs/engage-backend/internal/model"
	"github.com/xenolabs/engage-backend/internal/segment"
)

type CampaignRepositoryInterface interface {
	// Campaign creation protocol (single transaction)
	CreateWithAudience(ctx context.Context, name string, rules segment.RuleSet, render func(model.Customer) string) (*model.Campaign, []model.SendTask, error)

	// Listing and delivery log
	ListWithStats(ctx context.Context) ([]model.CampaignSummary, error)
	UpdateDeliveryStatus(ctx context.Context, logID int, status string) error
}

type CampaignRepository struct {
	DB        *sql.DB
	Customers CustomerRepositoryInterface
}

// CreateWithAudience runs the whole campaign-creation protocol in one
// transaction: re-resolve the audience from the rules (client-supplied
// customer lists are never trusted), insert the campaign row with the
// snapshot count, then one PENDING delivery-log row per matched customer.
// An empty audience aborts with ErrEmptyAudience and persists nothing.
//
// The returned send tasks carry the committed log ids; publishing them is
// the caller's job and happens strictly after this function returns.
func (r *CampaignRepository) CreateWithAudience(ctx context.Context, name string, rules segment.RuleSet, render func(model.Customer) string) (*model.Campaign, []model.SendTask, error) {
	ruleJSON, err := json.Marshal(rules)
	if err != nil {
		return nil, nil, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	// No-op after a successful Commit; guarantees no partial rows remain if
	// the request is cancelled or times out mid-protocol.
	defer tx.Rollback()

	audience, err := r.Customers.SelectAudience(ctx, tx, segment.Compile(rules))
	if err != nil {
		return nil, nil, err
	}
	if len(audience) == 0 {
		return nil, nil, appErrors.NewEmptyAudience()
	}

	campaign := &model.Campaign{
		Name:         name,
		RuleSet:      string(ruleJSON),
		AudienceSize: len(audience),
		CreatedAt:    time.Now(),
	}
	err = tx.QueryRowContext(ctx, `
        INSERT INTO campaigns (name, rule_set, audience_size, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `, campaign.Name, campaign.RuleSet, campaign.AudienceSize, campaign.CreatedAt).Scan(&campaign.ID)
	if err != nil {
		return nil, nil, err
	}

	tasks := make([]model.SendTask, 0, len(audience))
	for _, customer := range audience {
		message := render(customer)
		var logID int
		err = tx.QueryRowContext(ctx, `
            INSERT INTO delivery_log (campaign_id, customer_id, message_body, status)
            VALUES ($1, $2, $3, $4)
            RETURNING id
        `, campaign.ID, customer.ID, message, model.StatusPending).Scan(&logID)
		if err != nil {
			return nil, nil, err
		}
		tasks = append(tasks, model.SendTask{LogID: logID, Customer: customer, Message: message})
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return campaign, tasks, nil
}

// ListWithStats returns all campaigns, newest first, with sent/failed counts
// aggregated from the delivery log. audience_size stays the creation-time
// snapshot; only the delivery counts are live.
func (r *CampaignRepository) ListWithStats(ctx context.Context) ([]model.CampaignSummary, error) {
	query := `
        SELECT c.id, c.name, c.audience_size, c.created_at,
               COALESCE(SUM(CASE WHEN d.status = 'SENT' THEN 1 ELSE 0 END), 0) AS sent_count,
               COALESCE(SUM(CASE WHEN d.status = 'FAILED' THEN 1 ELSE 0 END), 0) AS failed_count
        FROM campaigns c
        LEFT JOIN delivery_log d ON d.campaign_id = c.id
        GROUP BY c.id, c.name, c.audience_size, c.created_at
        ORDER BY c.created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []model.CampaignSummary{}
	for rows.Next() {
		var s model.CampaignSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.AudienceSize, &s.CreatedAt, &s.SentCount, &s.FailedCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// UpdateDeliveryStatus overwrites a log entry's status and sent_at keyed by
// id. A pure overwrite: replays are harmless and the most recent receipt
// always wins, since the external channel guarantees neither ordering nor
// uniqueness. An unknown id updates zero rows and is not an error.
func (r *CampaignRepository) UpdateDeliveryStatus(ctx context.Context, logID int, status string) error {
	_, err := r.DB.ExecContext(ctx, `
        UPDATE delivery_log SET status = $1, sent_at = NOW() WHERE id = $2
    `, status, logID)
	return err
}
