package scheduler_fx

import (
	"context"

	"go.uber.org/fx"
	"tweettocourse/internal/repositories"
	"tweettocourse/internal/services"
)

var Module = fx.Options(
	fx.Provide(provideScheduler),
	fx.Invoke(registerScheduler),
)

func provideScheduler(accountRepo repositories.AccountRepository) *services.UsageResetScheduler {
	return services.NewUsageResetScheduler(accountRepo)
}

func registerScheduler(lc fx.Lifecycle, scheduler *services.UsageResetScheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return scheduler.Start()
		},
		OnStop: func(ctx context.Context) error {
			return scheduler.Stop(ctx)
		},
	})
}
