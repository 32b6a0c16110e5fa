package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/toylink/donations/internal/app/service/donation"
	"github.com/toylink/donations/internal/app/service/payment"
	"github.com/toylink/donations/internal/models"
	"github.com/toylink/donations/pkg/response"
)

type CreateDonationResponse struct {
	Payment    *models.Payment `json:"payment"`
	Warning    string          `json:"warning,omitempty"`
	WaitingURL string          `json:"waiting_url"`
}

func waitingURL(id uint) string { return fmt.Sprintf("/donations/%d", id) }

func parseDonationID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid donation id"))
		return 0, false
	}
	return uint(id), true
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, payment.ErrValidation), errors.Is(err, payment.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
	case errors.Is(err, payment.ErrNotFound):
		c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
	case errors.Is(err, payment.ErrProvider):
		c.JSON(http.StatusBadGateway, response.ErrorT[any](response.APIResponseCodeProvider, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
	}
}

// @Summary      Submit donation
// @Description  Registers a donation and opens a PIX charge for it. A provider failure still stores the donation and returns a warning.
// @Tags         Donation
// @Accept       json
// @Produce      json
// @Param        request body donation.CreateDonationRequest true "Donation"
// @Success      201  {object}  handlers.RespCreateDonation
// @Failure      400  {object}  handlers.RespOK
// @Router       /api/v1/donations [post]
func ApiCreateDonation(svc donation.Donations) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req donation.CreateDonationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.CreateDonation(c.Request.Context(), &req)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, response.OKT(&CreateDonationResponse{
			Payment:    res.Payment,
			Warning:    res.Warning,
			WaitingURL: waitingURL(res.Payment.ID),
		}))
	}
}

// @Summary      Get donation
// @Description  Returns the stored donation without contacting the provider.
// @Tags         Donation
// @Produce      json
// @Param        id path int true "Donation id"
// @Success      200  {object}  handlers.RespPayment
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/donations/{id} [get]
func ApiGetDonation(svc donation.Donations) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseDonationID(c)
		if !ok {
			return
		}
		p, err := svc.GetDonation(c.Request.Context(), id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      Confirm donation status
// @Description  Refreshes the donation status from the provider when a PIX charge exists.
// @Tags         Donation
// @Produce      json
// @Param        id path int true "Donation id"
// @Success      200  {object}  handlers.RespConfirm
// @Failure      404  {object}  handlers.RespOK
// @Failure      502  {object}  handlers.RespOK
// @Router       /api/v1/donations/{id}/confirm [post]
func ApiConfirmDonation(svc donation.Donations) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseDonationID(c)
		if !ok {
			return
		}
		res, err := svc.ConfirmStatus(c.Request.Context(), id)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterDonationRoutes(r gin.IRouter, svc donation.Donations) {
	r.POST("", ApiCreateDonation(svc))
	r.GET("/:id", ApiGetDonation(svc))
	r.POST("/:id/confirm", ApiConfirmDonation(svc))
}
