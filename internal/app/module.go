package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/toylink/donations/internal/app/api/server"
	"github.com/toylink/donations/internal/app/service/admin"
	"github.com/toylink/donations/internal/app/service/donation"
	"github.com/toylink/donations/internal/app/service/eventlog"
	"github.com/toylink/donations/internal/app/service/payment"
	"github.com/toylink/donations/internal/app/service/reconcile"
	"github.com/toylink/donations/internal/app/service/statistics"
	"github.com/toylink/donations/internal/app/service/webhook"
	"github.com/toylink/donations/internal/platform/db"
	"github.com/toylink/donations/internal/platform/mercadopago"
	"github.com/toylink/donations/pkg/config"
	"github.com/toylink/donations/pkg/logger"
	"github.com/toylink/donations/pkg/tracing"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// Infra is shared by the API server and the CLI.
var Infra = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
)

var Module = fx.Options(
	Infra,
	tracing.Module,
	mercadopago.Module,
	payment.Module,
	reconcile.Module,
	donation.Module,
	eventlog.Module,
	webhook.Module,
	statistics.Module,
	admin.Module,
	server.Module,
)
