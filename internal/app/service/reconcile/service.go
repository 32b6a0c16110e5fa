package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/toylink/donations/internal/app/service/payment"
	"github.com/toylink/donations/internal/models"
	"github.com/toylink/donations/pkg/logctx"
	"github.com/toylink/donations/pkg/metrics"
	"github.com/toylink/donations/pkg/types"
)

type Trigger string

const (
	TriggerPoll    Trigger = "poll"
	TriggerWebhook Trigger = "webhook"
)

const maxAttempts = 3

// Update is a provider snapshot of one payment.
type Update struct {
	ProviderPaymentID string
	Status            string
	StatusDetail      string
	DateApproved      *string
	ExternalReference *string
	Trigger           Trigger
}

type Result struct {
	Success bool
	Message string
	Payment *models.Payment
}

// Reconciler applies provider snapshots to local payments.
type Reconciler interface {
	Reconcile(ctx context.Context, u *Update) *Result
}

type Service struct {
	repo  payment.Repository
	table StatusTable
	log   *zap.SugaredLogger
}

func New(repo payment.Repository, log *zap.SugaredLogger) *Service {
	return &Service{repo: repo, table: StatusTableV1, log: log}
}

// Reconcile never returns an error; failures are reported through Result.
func (s *Service) Reconcile(ctx context.Context, u *Update) *Result {
	log := logctx.FromCtx(ctx, s.log)
	if u == nil || u.ProviderPaymentID == "" {
		return s.record(u, "", "", &Result{Message: "no payment id"})
	}

	current, err := s.repo.GetByProviderChargeID(ctx, u.ProviderPaymentID)
	if err != nil {
		if errors.Is(err, payment.ErrNotFound) {
			return s.record(u, "", "", &Result{Message: fmt.Sprintf("payment with provider id %s not found", u.ProviderPaymentID)})
		}
		return s.record(u, "", "", &Result{Message: fmt.Sprintf("failed to update payment: %v", err)})
	}

	newStatus := s.table.Map(u.Status)
	var approvedAt *time.Time
	if newStatus == types.PaymentStatusApproved && u.DateApproved != nil && *u.DateApproved != "" {
		if t, err := ParseProviderTime(*u.DateApproved); err != nil {
			log.Warnw("reconcile_bad_date_approved", "provider_payment_id", u.ProviderPaymentID, "value", *u.DateApproved, "error", err.Error())
		} else {
			approvedAt = &t
		}
	}

	oldStatus := current.Status
	for attempt := 1; ; attempt++ {
		updated, err := s.repo.UpdateStatus(ctx, &payment.StatusChange{
			ID:               current.ID,
			ExpectedRevision: current.Revision,
			Status:           newStatus,
			ApprovedAt:       approvedAt,
		})
		if err == nil {
			msg := fmt.Sprintf("payment #%d updated: %s → %s", updated.ID, oldStatus, newStatus)
			if newStatus == types.PaymentStatusApproved {
				msg += fmt.Sprintf(" | donation of R$ %s confirmed", updated.Amount.StringFixed(2))
			}
			log.Infow("reconcile_applied",
				"payment_id", updated.ID,
				"provider_payment_id", u.ProviderPaymentID,
				"provider_status", u.Status,
				"status_detail", u.StatusDetail,
				"old", oldStatus,
				"new", newStatus,
				"trigger", u.Trigger,
				"attempt", attempt,
			)
			return s.record(u, oldStatus, newStatus, &Result{Success: true, Message: msg, Payment: updated})
		}
		if !errors.Is(err, payment.ErrConcurrentUpdate) {
			return s.record(u, oldStatus, newStatus, &Result{Message: fmt.Sprintf("failed to update payment: %v", err)})
		}
		if attempt >= maxAttempts {
			log.Warnw("reconcile_concurrent_update", "payment_id", current.ID, "attempts", attempt)
			return s.record(u, oldStatus, newStatus, &Result{Message: fmt.Sprintf("failed to update payment #%d: %v", current.ID, payment.ErrConcurrentUpdate)})
		}
		fresh, err := s.repo.GetByID(ctx, current.ID)
		if err != nil {
			return s.record(u, oldStatus, newStatus, &Result{Message: fmt.Sprintf("failed to update payment: %v", err)})
		}
		if fresh.Status != current.Status {
			// a concurrent reconcile moved the status after our snapshot was read; it is newer
			log.Infow("reconcile_superseded",
				"payment_id", fresh.ID,
				"provider_payment_id", u.ProviderPaymentID,
				"stale", newStatus,
				"current", fresh.Status,
				"trigger", u.Trigger,
			)
			return s.record(u, fresh.Status, fresh.Status, &Result{
				Success: true,
				Message: fmt.Sprintf("payment #%d already updated concurrently: %s", fresh.ID, fresh.Status),
				Payment: fresh,
			})
		}
		current = fresh
		oldStatus = current.Status
	}
}

func (s *Service) record(u *Update, from, to types.PaymentStatus, r *Result) *Result {
	trigger := ""
	if u != nil {
		trigger = string(u.Trigger)
	}
	result := "ok"
	if !r.Success {
		result = "failed"
	}
	metrics.Reconciled.WithLabelValues(trigger, string(from), string(to), result).Inc()
	return r
}

var providerTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
}

// ParseProviderTime parses ISO 8601 timestamps as sent by the provider. Timestamps
// without an offset are taken as UTC.
func ParseProviderTime(s string) (time.Time, error) {
	for _, layout := range providerTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: unsupported timestamp %q", payment.ErrMalformedInput, s)
}

var Module = fx.Options(
	fx.Provide(
		New,
		func(s *Service) Reconciler { return s },
	),
)
