package models

import (
	"time"

	"gorm.io/datatypes"
)

// CallSession binds a shareable session id to a room provisioned on the media
// provider. Records are immutable after creation; reconciliation hard-deletes
// them once the backing room is gone.
type CallSession struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ExternalID string            `json:"external_id"`
	Metadata   datatypes.JSONMap `json:"metadata"`
}
