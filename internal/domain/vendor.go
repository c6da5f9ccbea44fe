package domain

import "time"

// Vendor is the slice of the vendor directory this core reads at booking
// creation: the subscription tier and the external payout account. Vendor
// CRUD itself lives outside this service.
type Vendor struct {
	ID               int64     `gorm:"column:id;primaryKey" json:"id"`
	UserID           int64     `gorm:"column:user_id;index" json:"user_id"`
	BusinessName     string    `gorm:"column:business_name" json:"business_name"`
	Tier             string    `gorm:"column:tier" json:"tier"`
	PayoutAccountRef string    `gorm:"column:payout_account_ref" json:"payout_account_ref"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Vendor) TableName() string { return "vendors" }
