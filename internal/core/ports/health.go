package ports

//go:generate mockgen -source=health.go -destination=mocks/mock_health.go -package=mocks

import "context"

// HealthChecker is a dependency the /health endpoint probes: the ledger
// store always, redis when enabled.
type HealthChecker interface {
	Ping(ctx context.Context) error
	// Name keys the dependency in the health report.
	Name() string
}
