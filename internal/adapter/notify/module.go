package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/promopay/promopay/internal/config"
)

// Module exposes the notification emitter to the fx graph.
var Module = fx.Provide(newEmitter)

type emitterParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newEmitter(p emitterParams) (Emitter, error) {
	if p.Config.NotificationAddress == "" {
		return NewLogEmitter(p.Logger), nil
	}
	return NewHTTPEmitter(p.Config.NotificationAddress, p.Logger)
}
