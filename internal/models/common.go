package models

import "time"

// AuditFields are the row timestamps shared by every persisted entity.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
