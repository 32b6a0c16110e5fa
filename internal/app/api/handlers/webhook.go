package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/toylink/donations/internal/app/service/webhook"
	"github.com/toylink/donations/pkg/logctx"
)

const maxWebhookBody = 1 << 20

// WebhookProcessor handles raw provider deliveries.
type WebhookProcessor interface {
	Handle(ctx context.Context, method string, body []byte) webhook.Outcome
}

// @Summary      Mercado Pago webhook
// @Description  Receives payment notifications in either {"topic","resource"} or {"action","data":{"id"}} form. Answers plain text.
// @Tags         Webhook
// @Accept       json
// @Produce      plain
// @Param        payload body string true "Notification payload"
// @Success      200  {string}  string "OK"
// @Failure      400  {string}  string
// @Failure      404  {string}  string
// @Failure      405  {string}  string
// @Failure      500  {string}  string
// @Router       /api/v1/webhook/mercadopago [post]
func ApiMercadoPagoWebhook(h WebhookProcessor, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logctx.FromGin(c, log).Infow("webhook_mercadopago_received", "method", c.Request.Method)

		var body []byte
		if c.Request.Body != nil {
			b, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
			if err != nil {
				c.String(http.StatusBadRequest, "invalid body")
				return
			}
			body = b
		}
		out := h.Handle(c.Request.Context(), c.Request.Method, body)
		c.String(out.HTTPStatus, out.Body)
	}
}

func RegisterWebhookRoutes(r gin.IRouter, h WebhookProcessor, log *zap.SugaredLogger) {
	r.Any("/mercadopago", ApiMercadoPagoWebhook(h, log))
}
