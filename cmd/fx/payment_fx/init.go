package payment_fx

import (
	"log"
	"os"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"tweettocourse/internal/repositories"
	"tweettocourse/internal/services"
)

var payOsCfg = services.PayOSConfig{
	ClientID:     os.Getenv("PAYOS_CLIENT_ID"),
	ApiKey:       os.Getenv("PAYOS_API_KEY"),
	ChecksumKey:  os.Getenv("PAYOS_CHECKSUM_KEY"),
	ReturnURL:    os.Getenv("PAYOS_RETURN_URL"),
	CancelURL:    os.Getenv("PAYOS_CANCEL_URL"),
	ProviderName: "payos",
}

var Module = fx.Provide(
	providePlanRepo, providePlanService, providePaymentService,
)

func providePlanRepo(db *gorm.DB) repositories.IPlanRepository {
	return repositories.NewPlanRepository(db)
}

func providePlanService(planRepo repositories.IPlanRepository) services.PlanServiceInterface {
	return services.NewPlanService(planRepo)
}

func providePaymentService(db *gorm.DB, planRepo repositories.IPlanRepository, entitlements services.EntitlementServiceInterface) services.PaymentService {
	instance, err := services.NewPaymentService(db, payOsCfg, planRepo, entitlements)
	if err != nil {
		log.Printf("Error initializing PaymentService: %v", err)
	}

	return instance
}
