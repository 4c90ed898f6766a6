package models

import (
	"time"

	"github.com/google/uuid"
)

// DistributionRun is the audit record for one distributor execution.
type DistributionRun struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Distributed     int            `gorm:"column:distributed;not null"`
	OnlineCallers   int            `gorm:"column:online_callers;not null"`
	OrdersPerCaller int            `gorm:"column:orders_per_caller;not null"`
	Remainder       int            `gorm:"column:remainder;not null"`
	TopPerformerID  *uuid.UUID     `gorm:"column:top_performer_id;type:uuid"`
	SummaryByCaller map[string]int `gorm:"column:summary_by_caller;type:jsonb;serializer:json"`
	FailedWrites    int            `gorm:"column:failed_writes;not null;default:0"`
	RanAt           time.Time      `gorm:"column:ran_at;autoCreateTime;index"`

	Assignments []DistributionAssignment `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

func (DistributionRun) TableName() string { return "distribution_runs" }

// DistributionAssignment is one order handed to one agent during a run.
type DistributionAssignment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RunID     uuid.UUID `gorm:"column:run_id;type:uuid;not null;index"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	AgentID   uuid.UUID `gorm:"column:agent_id;type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (DistributionAssignment) TableName() string { return "distribution_assignments" }
