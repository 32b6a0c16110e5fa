package payment

import (
	"context"
	"time"

	"github.com/toylink/donations/internal/models"
	"github.com/toylink/donations/pkg/types"
)

// Charge holds the provider metadata attached to a payment after the PIX charge is created.
type Charge struct {
	ProviderChargeID  string
	RedirectURL       string
	QRCodeText        string
	QRCodeImageBase64 string
}

// StatusChange is a compare-and-swap status write. It only applies while the stored
// revision still equals ExpectedRevision.
type StatusChange struct {
	ID               uint
	ExpectedRevision int64
	Status           types.PaymentStatus
	// ApprovedAt is written only when set.
	ApprovedAt *time.Time
}

// Repository is the persistence surface of the payment record.
type Repository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByProviderChargeID(ctx context.Context, providerChargeID string) (*models.Payment, error)
	// AttachCharge stores provider metadata unless a charge is already attached.
	AttachCharge(ctx context.Context, id uint, charge *Charge) error
	// UpdateStatus returns ErrConcurrentUpdate when the revision moved.
	UpdateStatus(ctx context.Context, change *StatusChange) (*models.Payment, error)
}
