package models

import "time"

// ActivityAction is the kind of mutation recorded in the activity log.
type ActivityAction string

const (
	ActivityCreate ActivityAction = "CREATE"
	ActivityUpdate ActivityAction = "UPDATE"
	ActivityDelete ActivityAction = "DELETE"
	ActivityUpload ActivityAction = "UPLOAD"
)

// Entity types written to activity_logs.entity_type.
const (
	EntityVariationOrder     = "VariationOrder"
	EntityProjectDetails     = "ProjectDetails"
	EntityPaymentApplication = "PaymentApplication"
)

// ActivityLog is an append-only audit entry. EntityID is free text and is
// not a foreign key, so entries outlive the records they describe.
type ActivityLog struct {
	ID         string         `db:"id" json:"id"`
	UserID     *string        `db:"user_id" json:"userId,omitempty"`
	UserEmail  *string        `db:"user_email" json:"userEmail,omitempty"`
	Action     ActivityAction `db:"action" json:"action"`
	EntityType string         `db:"entity_type" json:"entityType"`
	EntityID   string         `db:"entity_id" json:"entityId"`
	Details    *string        `db:"details" json:"details,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
}
