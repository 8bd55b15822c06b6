package entitlement_fx

import (
	"go.uber.org/fx"
	"tweettocourse/internal/repositories"
	"tweettocourse/internal/services"
)

var Module = fx.Provide(
	provideEntitlementService)

func provideEntitlementService(accountRepo repositories.AccountRepository) services.EntitlementServiceInterface {
	return services.NewEntitlementService(accountRepo)
}
