package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookEventLogStatus string

const (
	WebhookEventLogStatusReceived     WebhookEventLogStatus = "received"
	WebhookEventLogStatusHandled      WebhookEventLogStatus = "handled"
	WebhookEventLogStatusIgnored      WebhookEventLogStatus = "ignored"
	WebhookEventLogStatusHandleFailed WebhookEventLogStatus = "handle_failed"
)

// WebhookEventLog records each provider webhook delivery and how it was handled.
// Use case: troubleshooting and auditing payment status changes.
type WebhookEventLog struct {
	ID                string                `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	ProviderID        string                `gorm:"column:provider_id;type:varchar(64);not null" json:"provider_id"`
	TraceID           string                `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	ProviderPaymentID string                `gorm:"column:provider_payment_id;type:varchar(128);index" json:"provider_payment_id"`
	Topic             string                `gorm:"column:topic;type:varchar(64)" json:"topic"`
	ReceivedAt        time.Time             `gorm:"column:received_at" json:"received_at"`
	Data              datatypes.JSON        `gorm:"column:data" json:"data"`
	Result            *datatypes.JSON       `gorm:"column:result" json:"result"`
	HTTPStatus        int                   `gorm:"column:http_status" json:"http_status"`
	Status            WebhookEventLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

func (WebhookEventLog) TableName() string { return "webhook_event_log" }
