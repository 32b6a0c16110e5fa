package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/toylink/donations/internal/app/service/eventlog"
	"github.com/toylink/donations/internal/app/service/reconcile"
	"github.com/toylink/donations/internal/models"
	"github.com/toylink/donations/internal/platform/mercadopago"
	"github.com/toylink/donations/pkg/logctx"
	"github.com/toylink/donations/pkg/metrics"
	"github.com/toylink/donations/pkg/types"
)

// PaymentFetcher loads the provider view of a payment.
type PaymentFetcher interface {
	GetPaymentInfo(ctx context.Context, providerPaymentID string) (*mercadopago.PaymentInfo, error)
}

// Outcome is the HTTP answer for a delivery. Body is plain text.
type Outcome struct {
	HTTPStatus int
	Body       string
}

type Handler struct {
	provider   PaymentFetcher
	reconciler reconcile.Reconciler
	events     eventlog.Recorder
	Logger     *zap.SugaredLogger
}

func NewHandler(provider mercadopago.Client, reconciler reconcile.Reconciler, events eventlog.Recorder, log *zap.SugaredLogger) *Handler {
	return &Handler{provider: provider, reconciler: reconciler, events: events, Logger: log}
}

// Handle processes one delivery. It never panics.
func (h *Handler) Handle(ctx context.Context, method string, body []byte) (out Outcome) {
	log := logctx.FromCtx(ctx, h.Logger)
	if method != http.MethodPost {
		return Outcome{HTTPStatus: http.StatusMethodNotAllowed, Body: "method not allowed"}
	}

	received := time.Now()
	var n *Notification
	var rec *reconcile.Result
	h.save(ctx, &models.WebhookEventLog{
		ReceivedAt: received,
		Data:       rawData(body),
		Status:     models.WebhookEventLogStatusReceived,
	})

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("webhook_panic", "panic", fmt.Sprint(r))
			out = Outcome{HTTPStatus: http.StatusInternalServerError, Body: fmt.Sprintf("internal error: %v", r)}
		}
		h.finish(ctx, received, body, n, rec, out)
	}()

	n, err := Parse(body)
	if err != nil {
		log.Warnw("webhook_rejected", "error", err.Error())
		return Outcome{HTTPStatus: http.StatusBadRequest, Body: err.Error()}
	}
	if !n.Supported {
		log.Infow("webhook_ignored", "topic", n.Topic)
		return Outcome{HTTPStatus: http.StatusOK, Body: n.Ignored}
	}

	info, err := h.provider.GetPaymentInfo(ctx, n.ProviderPaymentID)
	if err != nil {
		if errors.Is(err, mercadopago.ErrPaymentNotFound) {
			log.Warnw("webhook_payment_not_found", "provider_payment_id", n.ProviderPaymentID)
			return Outcome{HTTPStatus: http.StatusNotFound, Body: "payment not found"}
		}
		log.Errorw("webhook_payment_info_failed", "provider_payment_id", n.ProviderPaymentID, "error", err.Error())
		return Outcome{HTTPStatus: http.StatusInternalServerError, Body: fmt.Sprintf("internal error: %v", err)}
	}
	if info == nil {
		return Outcome{HTTPStatus: http.StatusNotFound, Body: "payment not found"}
	}
	log.Infow("webhook_payment_info",
		"provider_payment_id", n.ProviderPaymentID,
		"status", info.Status,
		"status_detail", info.StatusDetail,
		"external_reference", info.ExternalReference,
	)

	rec = h.reconciler.Reconcile(ctx, &reconcile.Update{
		ProviderPaymentID: n.ProviderPaymentID,
		Status:            info.Status,
		StatusDetail:      info.StatusDetail,
		DateApproved:      info.DateApproved,
		ExternalReference: info.ExternalReference,
		Trigger:           reconcile.TriggerWebhook,
	})
	if rec == nil || !rec.Success {
		msg := "reconciliation failed"
		if rec != nil {
			msg = rec.Message
		}
		log.Warnw("webhook_reconcile_failed", "provider_payment_id", n.ProviderPaymentID, "message", msg)
		return Outcome{HTTPStatus: http.StatusBadRequest, Body: msg}
	}
	log.Infow("webhook_handled", "provider_payment_id", n.ProviderPaymentID, "message", rec.Message)
	return Outcome{HTTPStatus: http.StatusOK, Body: "OK"}
}

func (h *Handler) finish(ctx context.Context, received time.Time, body []byte, n *Notification, rec *reconcile.Result, out Outcome) {
	status := models.WebhookEventLogStatusHandleFailed
	outcome := "failed"
	switch {
	case out.HTTPStatus == http.StatusOK && n != nil && !n.Supported:
		status, outcome = models.WebhookEventLogStatusIgnored, "ignored"
	case out.HTTPStatus == http.StatusOK:
		status, outcome = models.WebhookEventLogStatusHandled, "handled"
	}
	metrics.WebhookHandled.WithLabelValues(outcome).Inc()

	resMap := map[string]any{"http_status": out.HTTPStatus, "body": out.Body}
	if rec != nil {
		resMap["message"] = rec.Message
		if rec.Payment != nil {
			resMap["payment_id"] = rec.Payment.ID
			resMap["status"] = rec.Payment.Status
		}
	}
	resBytes, _ := json.Marshal(resMap)
	result := datatypes.JSON(resBytes)

	entry := &models.WebhookEventLog{
		ReceivedAt: received,
		Data:       rawData(body),
		Result:     &result,
		HTTPStatus: out.HTTPStatus,
		Status:     status,
	}
	if n != nil {
		entry.Topic = n.Topic
		entry.ProviderPaymentID = n.ProviderPaymentID
	}
	h.save(ctx, entry)
}

func (h *Handler) save(ctx context.Context, entry *models.WebhookEventLog) {
	if h.events == nil {
		return
	}
	entry.ProviderID = string(types.PaymentProviderMercadoPago)
	entry.TraceID = logctx.TraceID(ctx)
	h.events.Save(ctx, entry)
}

// rawData keeps the body as JSON; non-JSON bodies are stored as a JSON string.
func rawData(body []byte) datatypes.JSON {
	if json.Valid(body) {
		return datatypes.JSON(body)
	}
	b, _ := json.Marshal(string(body))
	return datatypes.JSON(b)
}

var Module = fx.Options(
	fx.Provide(NewHandler),
)
