package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
)

// Client is a customer record; phone is the natural key used for dedup.
type Client struct {
	ID       uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FullName string              `gorm:"column:full_name;not null"`
	Phone    string              `gorm:"column:phone;not null;uniqueIndex:uq_clients_phone"`
	City     *string             `gorm:"column:city"`
	Zone     *string             `gorm:"column:zone"`
	Address  *string             `gorm:"column:address"`
	Notes    *string             `gorm:"column:notes"`
	Segment  enums.ClientSegment `gorm:"column:segment;type:text;not null;default:'new';index"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Client) TableName() string { return "clients" }
