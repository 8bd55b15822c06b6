package controllers_fx

import (
	"go.uber.org/fx"
	"tweettocourse/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewEntitlementController),
	fx.Provide(controllers.NewCourseController),
	fx.Provide(controllers.NewExportController),
	fx.Provide(controllers.NewPaymentController),
	fx.Provide(controllers.NewFeedbackController),
	fx.Provide(controllers.NewDashboardController))
