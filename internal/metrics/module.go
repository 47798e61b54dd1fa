package metrics

import "go.uber.org/fx"

// Module wires metrics collection for dependency injection.
var Module = fx.Provide(New)
