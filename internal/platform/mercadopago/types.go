package mercadopago

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PixChargeRequest is what the donation flow needs to open a PIX charge.
type PixChargeRequest struct {
	Amount      decimal.Decimal
	PayerEmail  string
	PayerTaxID  string
	Description string
}

// PixCharge is the subset of the created payment used to display the charge.
type PixCharge struct {
	ID                string
	RedirectURL       string
	QRCodeText        string
	QRCodeImageBase64 string
}

// PaymentInfo is the provider snapshot fed to reconciliation.
type PaymentInfo struct {
	ID                string
	Status            string
	StatusDetail      string
	DateApproved      *string
	ExternalReference *string
}

type createPaymentBody struct {
	TransactionAmount json.Number `json:"transaction_amount"`
	Description       string      `json:"description"`
	PaymentMethodID   string      `json:"payment_method_id"`
	Payer             payer       `json:"payer"`
}

type payer struct {
	Email          string         `json:"email"`
	Identification identification `json:"identification"`
}

type identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type paymentResponse struct {
	ID                 json.Number        `json:"id"`
	Status             string             `json:"status"`
	StatusDetail       string             `json:"status_detail"`
	DateApproved       *string            `json:"date_approved"`
	ExternalReference  *string            `json:"external_reference"`
	PointOfInteraction pointOfInteraction `json:"point_of_interaction"`
}

type pointOfInteraction struct {
	TransactionData transactionData `json:"transaction_data"`
}

type transactionData struct {
	TicketURL    string `json:"ticket_url"`
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}
