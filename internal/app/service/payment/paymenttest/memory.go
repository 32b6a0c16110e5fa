// Package paymenttest provides an in-memory payment.Repository for service tests.
package paymenttest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/toylink/donations/internal/app/service/payment"
	"github.com/toylink/donations/internal/models"
)

type Repository struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Payment

	// Err, when set, is returned by every call.
	Err error
	// BeforeUpdate runs inside UpdateStatus before the revision check.
	BeforeUpdate func(change *payment.StatusChange)
	// AttachErr is returned by AttachCharge only.
	AttachErr error

	Creates       int
	StatusUpdates int
}

func New() *Repository {
	return &Repository{rows: map[uint]*models.Payment{}}
}

func clone(p *models.Payment) *models.Payment {
	c := *p
	return &c
}

func (r *Repository) Create(_ context.Context, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.nextID++
	p.ID = r.nextID
	now := time.Now()
	if p.ApprovedAt.IsZero() {
		p.ApprovedAt = now
	}
	p.CreatedAt, p.UpdatedAt = now, now
	r.rows[p.ID] = clone(p)
	r.Creates++
	return nil
}

// Put stores p as-is, for seeding.
func (r *Repository) Put(p *models.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		r.nextID++
		p.ID = r.nextID
	} else if p.ID > r.nextID {
		r.nextID = p.ID
	}
	r.rows[p.ID] = clone(p)
}

func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *Repository) GetByID(_ context.Context, id uint) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", payment.ErrNotFound, id)
	}
	return clone(p), nil
}

func (r *Repository) GetByProviderChargeID(_ context.Context, providerChargeID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, p := range r.rows {
		if p.ProviderChargeID != nil && *p.ProviderChargeID == providerChargeID {
			return clone(p), nil
		}
	}
	return nil, fmt.Errorf("%w: provider id %s", payment.ErrNotFound, providerChargeID)
}

func (r *Repository) AttachCharge(_ context.Context, id uint, charge *payment.Charge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if r.AttachErr != nil {
		return r.AttachErr
	}
	p, ok := r.rows[id]
	if !ok {
		return fmt.Errorf("%w: id %d", payment.ErrNotFound, id)
	}
	if p.ProviderChargeID != nil {
		return fmt.Errorf("%w: payment %d already has a provider charge", payment.ErrMalformedInput, id)
	}
	p.ProviderChargeID = lo.ToPtr(charge.ProviderChargeID)
	p.ProviderRedirectURL = lo.EmptyableToPtr(charge.RedirectURL)
	p.QRCodeText = lo.EmptyableToPtr(charge.QRCodeText)
	p.QRCodeImageBase64 = lo.EmptyableToPtr(charge.QRCodeImageBase64)
	return nil
}

func (r *Repository) UpdateStatus(_ context.Context, change *payment.StatusChange) (*models.Payment, error) {
	if r.BeforeUpdate != nil {
		r.BeforeUpdate(change)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.rows[change.ID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", payment.ErrNotFound, change.ID)
	}
	if p.Revision != change.ExpectedRevision {
		return nil, fmt.Errorf("%w: payment %d revision %d", payment.ErrConcurrentUpdate, change.ID, change.ExpectedRevision)
	}
	p.Status = change.Status
	p.Revision++
	if change.ApprovedAt != nil {
		p.ApprovedAt = *change.ApprovedAt
	}
	p.UpdatedAt = time.Now()
	r.StatusUpdates++
	return clone(p), nil
}

// Bump simulates a concurrent writer moving the revision of id.
func (r *Repository) Bump(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.rows[id]; ok {
		p.Revision++
	}
}

var _ payment.Repository = (*Repository)(nil)
