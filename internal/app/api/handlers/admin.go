package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toylink/donations/internal/app/api/middleware"
	"github.com/toylink/donations/internal/app/service/admin"
	"github.com/toylink/donations/internal/app/service/statistics"
	"github.com/toylink/donations/pkg/response"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary      Admin login
// @Description  Exchanges admin credentials for a bearer token.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.LoginRequest true "Credentials"
// @Success      200  {object}  handlers.RespLogin
// @Failure      401  {object}  handlers.RespOK
// @Router       /api/v1/admin/login [post]
func ApiAdminLogin(auth admin.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, admin.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Donations dashboard (Admin)
// @Description  Paginated donations filtered by status and category, with totals over all donations.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        status   query string false "pending | approved | rejected | cancelled"
// @Param        category query string false "toys | food"
// @Param        page     query int    false "1-based page"
// @Success      200  {object}  handlers.RespDashboard
// @Failure      400  {object}  handlers.RespOK
// @Failure      401  {object}  handlers.RespOK
// @Router       /api/v1/admin/dashboard [get]
func ApiDashboard(svc statistics.Dashboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.DashboardRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetDashboard(c.Request.Context(), &req)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, auth admin.Authenticator, stats statistics.Dashboard) {
	r.POST("/login", ApiAdminLogin(auth))
	r.GET("/dashboard", middleware.AdminAuthMiddleware(auth), ApiDashboard(stats))
}
