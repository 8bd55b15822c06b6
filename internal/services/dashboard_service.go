package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	dbm "tweettocourse/internal/models/db_models"
	resp "tweettocourse/internal/models/response_models"
	"tweettocourse/internal/repositories"
	"tweettocourse/pkg/utils"
)

type DashboardService interface {
	BuildDashboard(ctx context.Context, rng resp.TimeRange, currency string) (*resp.DashboardReport, error)
}

type dashboardService struct {
	repo repositories.DashboardRepository
}

func NewDashboardService(repo repositories.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo}
}

// normalizeRange ensures sane defaults and ordering
func normalizeRange(r resp.TimeRange) resp.TimeRange {
	out := r
	if out.Interval == "" {
		out.Interval = "day"
	}
	if out.End.IsZero() {
		out.End = time.Now().UTC()
	}
	if out.Start.IsZero() {
		out.Start = out.End.AddDate(0, 0, -30) // last 30 days default
	}
	if out.Start.After(out.End) {
		out.Start, out.End = out.End, out.Start
	}
	return out
}

func (s *dashboardService) BuildDashboard(ctx context.Context, rng resp.TimeRange, currency string) (*resp.DashboardReport, error) {
	rng = normalizeRange(rng)
	if currency == "" {
		currency = "USD"
	}

	report := &resp.DashboardReport{Range: rng}

	var err error
	if report.KPIs.TotalAccounts, err = s.repo.CountTotalAccounts(ctx); err != nil {
		return nil, utils.ErrDatabaseError
	}
	if report.KPIs.NewAccounts, err = s.repo.CountNewAccounts(ctx, rng.Start, rng.End); err != nil {
		return nil, utils.ErrDatabaseError
	}
	if report.KPIs.TotalCourses, err = s.repo.CountTotalCourses(ctx); err != nil {
		return nil, utils.ErrDatabaseError
	}
	if report.KPIs.GenerationsThisPeriod, err = s.repo.SumGenerationsThisPeriod(ctx); err != nil {
		return nil, utils.ErrDatabaseError
	}
	if report.KPIs.ActiveSubscriptions, err = s.repo.CountSubscriptionsByStatus(ctx, dbm.SubStatusActive); err != nil {
		return nil, utils.ErrDatabaseError
	}
	if report.KPIs.TrialingSubscriptions, err = s.repo.CountSubscriptionsByStatus(ctx, dbm.SubStatusTrialing); err != nil {
		return nil, utils.ErrDatabaseError
	}
	if report.KPIs.CanceledSubscriptions, err = s.repo.CountCanceledInPeriod(ctx, rng.Start, rng.End); err != nil {
		return nil, utils.ErrDatabaseError
	}
	if report.KPIs.ExpiredSubscriptions, err = s.repo.CountSubscriptionsByStatus(ctx, dbm.SubStatusExpired); err != nil {
		return nil, utils.ErrDatabaseError
	}

	revenueRows, err := s.repo.RevenueSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	report.Revenue.Currency = currency
	for _, row := range revenueRows {
		report.Revenue.Points = append(report.Revenue.Points, resp.SeriesPoint{Bucket: row.Bucket, Value: row.Sum})
		report.Revenue.TotalMinor += row.Sum
	}

	userRows, err := s.repo.NewUsersSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	for _, row := range userRows {
		report.NewUsers.Points = append(report.NewUsers.Points, resp.SeriesPoint{Bucket: row.Bucket, Value: row.Sum})
	}

	mixRows, err := s.repo.PlanMix(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	var mixTotal int64
	for _, row := range mixRows {
		mixTotal += row.Count
	}
	for _, row := range mixRows {
		item := resp.PlanMixItem{
			PlanCode:   row.PlanCode,
			PlanName:   row.PlanName,
			TierCode:   row.TierCode,
			Count:      row.Count,
			PriceMinor: row.PriceMinor,
		}
		if id, err := uuid.Parse(row.PlanID); err == nil {
			item.PlanID = id
		}
		if mixTotal > 0 {
			item.Percent = float64(row.Count) / float64(mixTotal) * 100
		}
		report.PlanMix.Items = append(report.PlanMix.Items, item)
	}

	authorRows, err := s.repo.TopSourceAuthors(ctx, rng.Start, rng.End, 10)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	for _, row := range authorRows {
		report.TopAuthors = append(report.TopAuthors, resp.TopAuthor{Author: row.Author, Count: row.Count})
	}

	paymentRows, err := s.repo.RecentPaidTransactions(ctx, 10)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	for _, row := range paymentRows {
		payment := resp.RecentPayment{
			AmountMinor:   row.AmountMinor,
			Currency:      row.Currency,
			Status:        row.Status,
			Provider:      row.Provider,
			ProviderTxnID: row.ProviderTxnID,
			AccountEmail:  row.AccountEmail,
		}
		if id, err := uuid.Parse(row.ID); err == nil {
			payment.ID = id
		}
		if row.PaidAt != nil {
			t := utils.FromUnixSeconds(*row.PaidAt)
			payment.PaidAt = &t
		}
		report.RecentPayments = append(report.RecentPayments, payment)
	}

	return report, nil
}
