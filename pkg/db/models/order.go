package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
)

// Order is a customer order worked by call agents and delivery staff.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber int64             `gorm:"column:order_number;not null;uniqueIndex"`
	ClientID    *uuid.UUID        `gorm:"column:client_id;type:uuid;index"`
	ClientName  string            `gorm:"column:client_name;not null"`
	ClientPhone string            `gorm:"column:client_phone;not null"`
	City        *string           `gorm:"column:city"`
	Zone        *string           `gorm:"column:zone"`
	Address     *string           `gorm:"column:address"`
	ProductName string            `gorm:"column:product_name;not null"`
	Quantity    int               `gorm:"column:quantity;not null;default:1"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending';index"`
	AssigneeID  *uuid.UUID        `gorm:"column:assignee_id;type:uuid;index"`
	AssignedAt  *time.Time        `gorm:"column:assigned_at"`
	Source      string            `gorm:"column:source;not null;default:'manual'"`
	Notes       *string           `gorm:"column:notes"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }
