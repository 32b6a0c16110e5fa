package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/toylink/donations/internal/models"
)

// Store is the gorm backed Repository.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Create(ctx context.Context, p *models.Payment) error {
	if p == nil {
		return fmt.Errorf("%w: nil payment", ErrMalformedInput)
	}
	if p.ApprovedAt.IsZero() {
		p.ApprovedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Store) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetByProviderChargeID(ctx context.Context, providerChargeID string) (*models.Payment, error) {
	if providerChargeID == "" {
		return nil, fmt.Errorf("%w: empty provider id", ErrNotFound)
	}
	var p models.Payment
	if err := s.db.WithContext(ctx).First(&p, "provider_charge_id = ?", providerChargeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: provider id %s", ErrNotFound, providerChargeID)
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) AttachCharge(ctx context.Context, id uint, charge *Charge) error {
	if charge == nil || charge.ProviderChargeID == "" {
		return fmt.Errorf("%w: empty charge", ErrMalformedInput)
	}
	res := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND provider_charge_id IS NULL", id).
		Updates(map[string]any{
			"provider_charge_id":    charge.ProviderChargeID,
			"provider_redirect_url": lo.EmptyableToPtr(charge.RedirectURL),
			"qr_code_text":          lo.EmptyableToPtr(charge.QRCodeText),
			"qr_code_image_base64":  lo.EmptyableToPtr(charge.QRCodeImageBase64),
			"updated_at":            time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: payment %d already has a provider charge", ErrMalformedInput, id)
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, change *StatusChange) (*models.Payment, error) {
	if change == nil {
		return nil, fmt.Errorf("%w: nil status change", ErrMalformedInput)
	}
	updates := map[string]any{
		"status":     change.Status,
		"revision":   change.ExpectedRevision + 1,
		"updated_at": time.Now(),
	}
	if change.ApprovedAt != nil {
		updates["approved_at"] = *change.ApprovedAt
	}
	res := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND revision = ?", change.ID, change.ExpectedRevision).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: payment %d revision %d", ErrConcurrentUpdate, change.ID, change.ExpectedRevision)
	}
	return s.GetByID(ctx, change.ID)
}

var Module = fx.Options(
	fx.Provide(
		fx.Annotate(NewStore, fx.As(new(Repository))),
	),
)
