package models

import (
	"strings"
	"time"
)

type User struct {
	ID                uint      `gorm:"primaryKey;autoIncrement"`
	Name              string    `gorm:"size:16;not null"`
	Email             string    `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash      string    `gorm:"size:72;not null"`
	ExternalAuthToken *string   `gorm:"size:64"`
	CreatedAt         time.Time
}

// EmailValidation is the pending signup code for one address.
type EmailValidation struct {
	Email     string    `gorm:"primaryKey;size:64"`
	Code      string    `gorm:"size:6;not null"`
	CreatedAt time.Time `gorm:"index;not null"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:100;not null"`
}

type Product struct {
	ID         uint     `gorm:"primaryKey;autoIncrement"`
	CategoryID uint     `gorm:"index;not null"`
	Category   Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Name       string   `gorm:"size:100;uniqueIndex;not null"`
	ImageURL   string   `gorm:"column:image_url;not null"`
	Price      int64    `gorm:"not null;check:price >= 0"`
	IsSoldout  bool     `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type OrderStatus struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"size:32;uniqueIndex;not null"`
}

const (
	StatusPending   uint = 1
	StatusConfirmed uint = 2
	StatusShipped   uint = 3
	StatusCancelled uint = 4
)

// OrderStatuses is the fixed status set seeded into order_statuses.
var OrderStatuses = []OrderStatus{
	{ID: StatusPending, Name: "pending"},
	{ID: StatusConfirmed, Name: "confirmed"},
	{ID: StatusShipped, Name: "shipped"},
	{ID: StatusCancelled, Name: "cancelled"},
}

func ValidStatus(id uint) bool {
	for _, s := range OrderStatuses {
		if s.ID == id {
			return true
		}
	}
	return false
}

func StatusIDByName(name string) (uint, bool) {
	for _, s := range OrderStatuses {
		if strings.EqualFold(s.Name, name) {
			return s.ID, true
		}
	}
	return 0, false
}

type Order struct {
	ID        uint        `gorm:"primaryKey;autoIncrement"`
	StatusID  uint        `gorm:"index;not null"`
	Status    OrderStatus `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"index"`
	UpdatedAt time.Time
}

// TotalPrice sums unit price times quantity over the loaded items.
func (o Order) TotalPrice() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.UnitPrice * int64(it.Quantity)
	}
	return total
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	OrderID   uint    `gorm:"index;not null"`
	ProductID uint    `gorm:"index;not null"`
	Product   Product `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	UnitPrice int64   `gorm:"not null"`
	Quantity  int     `gorm:"not null;check:quantity > 0"`
}

// RevokedSession blocks a session token id until it would have expired anyway.
type RevokedSession struct {
	JTI       string    `gorm:"primaryKey;size:36"`
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

// All lists every table, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&EmailValidation{},
		&Category{},
		&Product{},
		&OrderStatus{},
		&Order{},
		&OrderItem{},
		&RevokedSession{},
	}
}
