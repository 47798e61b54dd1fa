package usecase

import (
	"go.uber.org/fx"

	"github.com/promopay/promopay/internal/config"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		NewAuthUseCase,
		NewOrderUseCase,
	),
	fx.Provide(func(cfg *config.Config) Policy {
		return Policy{
			CommissionRate:     cfg.CommissionRate,
			AcceptanceWindow:   cfg.AcceptanceWindow,
			ConfirmationWindow: cfg.ConfirmationWindow,
		}
	}),
)
