package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
)

// CallerPresence is one heartbeat row per active client session.
type CallerPresence struct {
	UserID   uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey"`
	Role     enums.UserRole `gorm:"column:role;type:text;not null;index"`
	LastSeen time.Time      `gorm:"column:last_seen;not null;index"`
}

func (CallerPresence) TableName() string { return "caller_presence" }

// CallerScore is the cumulative performance score for one call agent.
type CallerScore struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Points    int       `gorm:"column:points;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CallerScore) TableName() string { return "caller_scores" }
