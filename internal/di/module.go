package di

import (
	"go.uber.org/fx"

	"github.com/promopay/promopay/internal/adapter/notify"
	"github.com/promopay/promopay/internal/adapter/payment"
	"github.com/promopay/promopay/internal/app"
	"github.com/promopay/promopay/internal/config"
	"github.com/promopay/promopay/internal/logger"
	"github.com/promopay/promopay/internal/metrics"
	"github.com/promopay/promopay/internal/pkg/auth"
	"github.com/promopay/promopay/internal/server/http/handlers"
	"github.com/promopay/promopay/internal/server/http/router"
	"github.com/promopay/promopay/internal/storage/postgres"
	"github.com/promopay/promopay/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		metrics.Module,
		postgres.Module,
		payment.Module,
		notify.Module,
		usecase.Module,
		fx.Provide(func(f *app.MarketFacade) handlers.MarketFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
