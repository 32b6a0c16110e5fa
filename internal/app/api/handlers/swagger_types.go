package handlers

import (
	"github.com/toylink/donations/internal/app/service/admin"
	"github.com/toylink/donations/internal/app/service/donation"
	"github.com/toylink/donations/internal/app/service/statistics"
	"github.com/toylink/donations/internal/models"
	"github.com/toylink/donations/pkg/response"
)

// RespOK is a generic envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespCreateDonation struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    CreateDonationResponse   `json:"data"`
}

type RespPayment struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Payment           `json:"data"`
}

type RespConfirm struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    donation.ConfirmResult   `json:"data"`
}

type RespLogin struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    admin.LoginResponse      `json:"data"`
}

type RespDashboard struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    statistics.DashboardResponse `json:"data"`
}
