package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/toylink/donations/internal/app/service/payment"
	"github.com/toylink/donations/internal/models"
	"github.com/toylink/donations/internal/platform/db/dbtest"
	"github.com/toylink/donations/pkg/config"
	"github.com/toylink/donations/pkg/types"
)

func seedPayments(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []struct {
		amount   string
		status   types.PaymentStatus
		category string
	}{
		{"10.50", types.PaymentStatusApproved, "toys"},
		{"20", types.PaymentStatusApproved, "food"},
		{"5.25", types.PaymentStatusPending, "toys"},
		{"7", types.PaymentStatusPending, ""},
		{"100", types.PaymentStatusRejected, "food"},
		{"3.10", types.PaymentStatusCancelled, "toys"},
		{"1.99", types.PaymentStatusApproved, ""},
	}
	for i, r := range rows {
		p := &models.Payment{
			Amount:     decimal.RequireFromString(r.amount),
			Status:     r.status,
			Category:   types.ParseDonationCategory(r.category),
			ApprovedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, gdb.Create(p).Error)
	}
}

func TestGetDashboard_AggregatesAreGlobal(t *testing.T) {
	gdb := dbtest.New(t)
	seedPayments(t, gdb)
	svc := New(gdb, &config.Config{})

	res, err := svc.GetDashboard(context.Background(), &DashboardRequest{Status: "rejected"})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Total)
	require.Len(t, res.Items, 1)
	require.Equal(t, types.PaymentStatusRejected, res.Items[0].Status)

	require.True(t, decimal.RequireFromString("32.49").Equal(res.Aggregates.TotalApproved), res.Aggregates.TotalApproved.String())
	require.True(t, decimal.RequireFromString("12.25").Equal(res.Aggregates.TotalPending), res.Aggregates.TotalPending.String())
	require.Equal(t, int64(3), res.Aggregates.ApprovedCount)
}

func TestGetDashboard_FiltersAndOrder(t *testing.T) {
	gdb := dbtest.New(t)
	seedPayments(t, gdb)
	svc := New(gdb, &config.Config{})

	res, err := svc.GetDashboard(context.Background(), &DashboardRequest{Category: "toys"})
	require.NoError(t, err)
	require.Equal(t, int64(3), res.Total)
	for i := 1; i < len(res.Items); i++ {
		require.False(t, res.Items[i].ApprovedAt.After(res.Items[i-1].ApprovedAt))
	}

	res, err = svc.GetDashboard(context.Background(), &DashboardRequest{Category: "toys", Status: "pending"})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Total)
	require.True(t, decimal.RequireFromString("5.25").Equal(res.Items[0].Amount))

	res, err = svc.GetDashboard(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, int64(7), res.Total)
	require.Equal(t, 1, res.TotalPages)
}

func TestGetDashboard_Pagination(t *testing.T) {
	gdb := dbtest.New(t)
	seedPayments(t, gdb)
	svc := New(gdb, &config.Config{Dashboard: config.DashboardConfig{PageSize: 3}})

	res, err := svc.GetDashboard(context.Background(), &DashboardRequest{Page: "2"})
	require.NoError(t, err)
	require.Equal(t, 2, res.Page)
	require.Equal(t, 3, res.TotalPages)
	require.Len(t, res.Items, 3)

	res, err = svc.GetDashboard(context.Background(), &DashboardRequest{Page: "99"})
	require.NoError(t, err)
	require.Equal(t, 3, res.Page)
	require.Len(t, res.Items, 1)

	res, err = svc.GetDashboard(context.Background(), &DashboardRequest{Page: "abc"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Page)
}

func TestGetDashboard_Empty(t *testing.T) {
	svc := New(dbtest.New(t), nil)
	res, err := svc.GetDashboard(context.Background(), &DashboardRequest{})
	require.NoError(t, err)
	require.Zero(t, res.Total)
	require.Empty(t, res.Items)
	require.Equal(t, 1, res.Page)
	require.Equal(t, DefaultPageSize, res.PageSize)
	require.True(t, res.Aggregates.TotalApproved.IsZero())
	require.Zero(t, res.Aggregates.ApprovedCount)
}

func TestGetDashboard_InvalidFilters(t *testing.T) {
	svc := New(dbtest.New(t), nil)
	_, err := svc.GetDashboard(context.Background(), &DashboardRequest{Status: "paid"})
	require.True(t, errors.Is(err, payment.ErrValidation))
	_, err = svc.GetDashboard(context.Background(), &DashboardRequest{Category: "books"})
	require.True(t, errors.Is(err, payment.ErrValidation))
}
