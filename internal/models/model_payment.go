package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/toylink/donations/pkg/types"
)

// Payment is a donation and the PIX charge generated for it.
type Payment struct {
	ID     uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Amount decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null" json:"amount"`
	// ApprovedAt starts as the creation time and is replaced by the provider approval time.
	ApprovedAt time.Time `gorm:"column:approved_at;not null;index" json:"approved_at"`
	// ProviderChargeID is the provider payment id, set once after the charge is created.
	ProviderChargeID    *string                 `gorm:"column:provider_charge_id;type:varchar(255);uniqueIndex" json:"provider_charge_id"`
	ProviderRedirectURL *string                 `gorm:"column:provider_redirect_url;type:text" json:"provider_redirect_url"`
	QRCodeText          *string                 `gorm:"column:qr_code_text;type:text" json:"qr_code_text"`
	QRCodeImageBase64   *string                 `gorm:"column:qr_code_image_base64;type:text" json:"qr_code_image_base64"`
	Category            *types.DonationCategory `gorm:"column:category;type:varchar(20);index" json:"category"`
	Status              types.PaymentStatus     `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	DonorName           *string                 `gorm:"column:donor_name;type:varchar(255)" json:"donor_name"`
	DonorEmail          *string                 `gorm:"column:donor_email;type:varchar(255)" json:"donor_email"`
	// Revision is bumped on every status write and guards concurrent reconciliation.
	Revision  int64     `gorm:"column:revision;not null;default:0" json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payment"
}

func (p *Payment) HasProviderCharge() bool {
	return p != nil && p.ProviderChargeID != nil && *p.ProviderChargeID != ""
}

func (p *Payment) String() string {
	return fmt.Sprintf("Donation of R$ %s - %s - %s", p.Amount.StringFixed(2), p.Category.Label(), p.ApprovedAt.Format("02/01/2006"))
}
