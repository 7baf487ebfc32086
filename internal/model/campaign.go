package model

import "time"

// Campaign is immutable after creation. AudienceSize is the snapshot count
// resolved at commit time and is never recomputed.
type Campaign struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	RuleSet      string    `db:"rule_set" json:"rule_set"`
	AudienceSize int       `db:"audience_size" json:"audience_size"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CampaignSummary is one row of the campaign listing, with delivery counts
// aggregated from the delivery log.
type CampaignSummary struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	AudienceSize int       `json:"audience_size"`
	CreatedAt    time.Time `json:"created_at"`
	SentCount    int       `json:"sent_count"`
	FailedCount  int       `json:"failed_count"`
}
