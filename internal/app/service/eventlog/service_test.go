package eventlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/toylink/donations/internal/models"
	"github.com/toylink/donations/internal/platform/db/dbtest"
)

func TestSave_ReceivedThenHandled(t *testing.T) {
	gdb := dbtest.New(t)
	s := New(gdb, zap.NewNop().Sugar())

	entry := &models.WebhookEventLog{
		ProviderID:        "mercadopago",
		ProviderPaymentID: "123",
		Topic:             "payment",
		Data:              datatypes.JSON(`{"topic":"payment","resource":"123"}`),
		Status:            models.WebhookEventLogStatusReceived,
	}
	s.Save(context.Background(), entry)
	require.NotEmpty(t, entry.ID)
	s.Wait()

	entry.Status = models.WebhookEventLogStatusHandled
	entry.HTTPStatus = 200
	s.Save(context.Background(), entry)
	s.Wait()

	var rows []models.WebhookEventLog
	require.NoError(t, gdb.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, models.WebhookEventLogStatusHandled, rows[0].Status)
	require.Equal(t, 200, rows[0].HTTPStatus)
	require.Equal(t, "123", rows[0].ProviderPaymentID)
}

func TestSave_NilIgnored(t *testing.T) {
	s := New(dbtest.New(t), zap.NewNop().Sugar())
	s.Save(context.Background(), nil)
	s.Wait()
}
