package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/toylink/donations/internal/platform/db"
	"github.com/toylink/donations/pkg/response"
)

const healthPingTimeout = 2 * time.Second

// PingFunc checks a dependency. Nil means nothing to check.
type PingFunc func(ctx context.Context) error

func DBPinger(gdb *gorm.DB) PingFunc {
	if gdb == nil {
		return nil
	}
	return func(ctx context.Context) error { return db.Ping(ctx, gdb, healthPingTimeout) }
}

// @Summary      Health check
// @Description  Returns service status and database reachability
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /healthz [get]
func ApiHealthz(ping PingFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, response.ErrorT(response.APIResponseCodeError, map[string]string{"status": "unavailable", "database": err.Error()}))
				return
			}
		}
		c.JSON(http.StatusOK, response.OKT(map[string]string{"status": "ok"}))
	}
}

func RegisterHealthRoutes(r gin.IRouter, ping PingFunc) {
	r.GET("/healthz", ApiHealthz(ping))
}
