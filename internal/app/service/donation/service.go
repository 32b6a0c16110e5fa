package donation

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/toylink/donations/internal/app/service/payment"
	"github.com/toylink/donations/internal/app/service/reconcile"
	"github.com/toylink/donations/internal/models"
	"github.com/toylink/donations/internal/platform/mercadopago"
	"github.com/toylink/donations/pkg/config"
	"github.com/toylink/donations/pkg/logctx"
	"github.com/toylink/donations/pkg/metrics"
	"github.com/toylink/donations/pkg/types"
)

const descriptionPrefix = "Doação ToyLink - "

var (
	MinAmount = decimal.RequireFromString("0.01")
	// MaxAmount is the largest value a decimal(10,2) column holds.
	MaxAmount = decimal.RequireFromString("99999999.99")
)

type CreateDonationRequest struct {
	Amount     string  `json:"amount"`
	DonorName  *string `json:"donor_name"`
	DonorEmail *string `json:"donor_email"`
	Category   *string `json:"category"`
}

type CreateDonationResult struct {
	Payment *models.Payment `json:"payment"`
	// Warning is set when the donation was stored but the PIX charge is missing.
	Warning string `json:"warning,omitempty"`
}

type ConfirmLevel string

const (
	ConfirmLevelSuccess ConfirmLevel = "success"
	ConfirmLevelInfo    ConfirmLevel = "info"
	ConfirmLevelError   ConfirmLevel = "error"
)

type ConfirmResult struct {
	Payment *models.Payment `json:"payment"`
	Level   ConfirmLevel    `json:"level"`
	Message string          `json:"message"`
}

// Donations is the user facing donation flow.
type Donations interface {
	CreateDonation(ctx context.Context, req *CreateDonationRequest) (*CreateDonationResult, error)
	GetDonation(ctx context.Context, id uint) (*models.Payment, error)
	ConfirmStatus(ctx context.Context, id uint) (*ConfirmResult, error)
}

type Service struct {
	repo       payment.Repository
	provider   mercadopago.Client
	reconciler reconcile.Reconciler
	cfg        config.MercadoPagoConfig
	log        *zap.SugaredLogger
}

func New(repo payment.Repository, provider mercadopago.Client, reconciler reconcile.Reconciler, cfg *config.Config, log *zap.SugaredLogger) *Service {
	return &Service{repo: repo, provider: provider, reconciler: reconciler, cfg: cfg.MercadoPago, log: log}
}

// ParseAmount validates a user supplied amount and rounds it to cents.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", payment.ErrValidation)
	}
	amount, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount", payment.ErrValidation)
	}
	amount = amount.Round(2)
	if amount.LessThan(MinAmount) {
		return decimal.Zero, fmt.Errorf("%w: minimum amount is %s", payment.ErrValidation, MinAmount.StringFixed(2))
	}
	if amount.GreaterThan(MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: maximum amount is %s", payment.ErrValidation, MaxAmount.StringFixed(2))
	}
	return amount, nil
}

// Description is the charge description shown on the payer's statement.
func Description(category *types.DonationCategory) string {
	return descriptionPrefix + category.Label()
}

func (s *Service) CreateDonation(ctx context.Context, req *CreateDonationRequest) (*CreateDonationResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: amount is required", payment.ErrValidation)
	}
	amount, err := ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	log := logctx.FromCtx(ctx, s.log)

	p := &models.Payment{
		Amount:     amount,
		Status:     types.PaymentStatusPending,
		Category:   types.ParseDonationCategory(lo.FromPtr(req.Category)),
		DonorName:  trimmedOrNil(req.DonorName),
		DonorEmail: trimmedOrNil(req.DonorEmail),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save donation: %w", err)
	}
	log.Infow("donation_created", "payment_id", p.ID, "amount", p.Amount.StringFixed(2), "category", p.Category.Label())

	charge, err := s.provider.CreatePixCharge(ctx, &mercadopago.PixChargeRequest{
		Amount:      amount,
		PayerEmail:  s.cfg.PayerEmail,
		PayerTaxID:  s.cfg.PayerTaxID,
		Description: Description(p.Category),
	})
	if err != nil {
		log.Errorw("pix_charge_failed", "payment_id", p.ID, "error", err.Error())
		metrics.DonationCreated.WithLabelValues("provider_error").Inc()
		return &CreateDonationResult{
			Payment: p,
			Warning: fmt.Sprintf("donation registered, but PIX generation failed: %v", err),
		}, nil
	}

	if err := s.repo.AttachCharge(ctx, p.ID, &payment.Charge{
		ProviderChargeID:  charge.ID,
		RedirectURL:       charge.RedirectURL,
		QRCodeText:        charge.QRCodeText,
		QRCodeImageBase64: charge.QRCodeImageBase64,
	}); err != nil {
		log.Errorw("pix_charge_attach_failed", "payment_id", p.ID, "provider_payment_id", charge.ID, "error", err.Error())
		metrics.DonationCreated.WithLabelValues("attach_error").Inc()
		return &CreateDonationResult{
			Payment: p,
			Warning: fmt.Sprintf("donation registered, but PIX generation failed: %v", err),
		}, nil
	}
	metrics.DonationCreated.WithLabelValues("ok").Inc()
	log.Infow("pix_charge_attached", "payment_id", p.ID, "provider_payment_id", charge.ID)

	stored, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		// the charge is attached; fall back to the in-memory view
		p.ProviderChargeID = lo.ToPtr(charge.ID)
		p.ProviderRedirectURL = lo.EmptyableToPtr(charge.RedirectURL)
		p.QRCodeText = lo.EmptyableToPtr(charge.QRCodeText)
		p.QRCodeImageBase64 = lo.EmptyableToPtr(charge.QRCodeImageBase64)
		return &CreateDonationResult{Payment: p}, nil
	}
	return &CreateDonationResult{Payment: stored}, nil
}

func (s *Service) GetDonation(ctx context.Context, id uint) (*models.Payment, error) {
	return s.repo.GetByID(ctx, id)
}

// ConfirmStatus refreshes a donation from the provider when it has a charge,
// otherwise it reports the stored status.
func (s *Service) ConfirmStatus(ctx context.Context, id uint) (*ConfirmResult, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.HasProviderCharge() {
		return confirmResult(p), nil
	}

	info, err := s.provider.GetPaymentInfo(ctx, *p.ProviderChargeID)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("poll_payment_info_failed", "payment_id", p.ID, "provider_payment_id", *p.ProviderChargeID, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", payment.ErrProvider, err)
	}

	res := s.reconciler.Reconcile(ctx, &reconcile.Update{
		ProviderPaymentID: *p.ProviderChargeID,
		Status:            info.Status,
		StatusDetail:      info.StatusDetail,
		DateApproved:      info.DateApproved,
		ExternalReference: info.ExternalReference,
		Trigger:           reconcile.TriggerPoll,
	})
	if !res.Success {
		return &ConfirmResult{Payment: p, Level: ConfirmLevelError, Message: res.Message}, nil
	}
	return confirmResult(res.Payment), nil
}

func confirmResult(p *models.Payment) *ConfirmResult {
	r := &ConfirmResult{Payment: p}
	switch p.Status {
	case types.PaymentStatusApproved:
		r.Level, r.Message = ConfirmLevelSuccess, "payment approved, thank you for your donation!"
	case types.PaymentStatusRejected:
		r.Level, r.Message = ConfirmLevelError, "payment was rejected"
	case types.PaymentStatusCancelled:
		r.Level, r.Message = ConfirmLevelError, "payment was cancelled"
	default:
		r.Level, r.Message = ConfirmLevelInfo, "payment not confirmed yet, please wait a few moments"
	}
	return r
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	return lo.EmptyableToPtr(strings.TrimSpace(*s))
}

var Module = fx.Options(
	fx.Provide(
		New,
		func(s *Service) Donations { return s },
	),
)
