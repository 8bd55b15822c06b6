package export_fx

import (
	"go.uber.org/fx"
	"tweettocourse/internal/repositories"
	"tweettocourse/internal/services"
)

var Module = fx.Provide(
	provideExportService)

func provideExportService(
	courseRepo repositories.ICourseRepository,
	accountRepo repositories.AccountRepository,
	entitlements services.EntitlementServiceInterface,
) services.ExportServiceInterface {
	return services.NewExportService(courseRepo, accountRepo, entitlements)
}
