package services

import (
	"context"

	"tweettocourse/internal/models/response_models"
	"tweettocourse/internal/repositories"
	"tweettocourse/pkg/utils"
)

type PlanServiceInterface interface {
	GetPlans(ctx context.Context) ([]response_models.SubscriptionPlan, error)
	GetPlanInfoById(ctx context.Context, planId string) (response_models.SubscriptionPlan, error)
}

type PlanService struct {
	planRepo repositories.IPlanRepository
}

func NewPlanService(planRepo repositories.IPlanRepository) PlanServiceInterface {
	return &PlanService{
		planRepo: planRepo,
	}
}

func (p *PlanService) GetPlans(ctx context.Context) ([]response_models.SubscriptionPlan, error) {
	plans, err := p.planRepo.GetAllActivePlans(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	result := make([]response_models.SubscriptionPlan, 0, len(plans))
	for _, plan := range plans {
		result = append(result, response_models.SubscriptionPlan{
			ID:          plan.ID,
			Code:        plan.Code,
			Name:        plan.Name,
			Description: plan.Description,
			TierCode:    string(plan.TierCode),
			Period:      string(plan.Period),
			Price:       plan.PriceMinor,
			Currency:    plan.Currency,
			TrialDays:   plan.TrialDays,
			IsActive:    plan.IsActive,
		})
	}
	return result, nil
}

func (p *PlanService) GetPlanInfoById(ctx context.Context, planId string) (response_models.SubscriptionPlan, error) {
	plan, err := p.planRepo.GetPlanInfoById(ctx, planId)
	if err != nil {
		return response_models.SubscriptionPlan{}, utils.ErrDatabaseError
	}
	if plan == nil {
		return response_models.SubscriptionPlan{}, utils.ErrPlanNotFound
	}

	return response_models.SubscriptionPlan{
		ID:          plan.ID,
		Code:        plan.Code,
		Name:        plan.Name,
		Description: plan.Description,
		TierCode:    string(plan.TierCode),
		Period:      string(plan.Period),
		Price:       plan.PriceMinor,
		Currency:    plan.Currency,
		TrialDays:   plan.TrialDays,
		IsActive:    plan.IsActive,
	}, nil
}
