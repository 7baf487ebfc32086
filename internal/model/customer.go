package model

import "time"

type Customer struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	TotalSpend  float64   `db:"total_spend" json:"total_spend"`
	VisitCount  int       `db:"visit_count" json:"visit_count"`
	LastVisitAt time.Time `db:"last_visit_at" json:"last_visit_at"`
}
