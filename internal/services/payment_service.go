package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/payOSHQ/payos-lib-golang"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	dbm "tweettocourse/internal/models/db_models"
	"tweettocourse/internal/models/response_models"
	"tweettocourse/internal/repositories"
	"tweettocourse/pkg/utils"
)

type PayOSConfig struct {
	ClientID     string
	ApiKey       string
	ChecksumKey  string // secret used to sign webhooks
	ReturnURL    string
	CancelURL    string
	ProviderName string // "payos" (stored on Transaction.Provider)
}

type PaymentService interface {
	CreateCheckoutForPlan(ctx context.Context, accountID uuid.UUID, planCode string) (*response_models.CreateCheckoutResponse, error)
	GetSubscriptionStatus(ctx context.Context, accountID uuid.UUID) (*response_models.SubscriptionStatusResponse, error)
	HandleWebhook(c *gin.Context)
}

type paymentService struct {
	db           *gorm.DB
	cfg          PayOSConfig
	planRepo     repositories.IPlanRepository
	entitlements EntitlementServiceInterface
}

func NewPaymentService(db *gorm.DB, cfg PayOSConfig, planRepo repositories.IPlanRepository, entitlements EntitlementServiceInterface) (PaymentService, error) {
	if cfg.ClientID == "" || cfg.ApiKey == "" || cfg.ChecksumKey == "" {
		return nil, errors.New("missing payOS credentials")
	}
	if cfg.ProviderName == "" {
		cfg.ProviderName = "payos"
	}

	return &paymentService{
		db:           db,
		cfg:          cfg,
		planRepo:     planRepo,
		entitlements: entitlements,
	}, nil
}

func (p *paymentService) CreateCheckoutForPlan(ctx context.Context, accountID uuid.UUID, planCode string) (*response_models.CreateCheckoutResponse, error) {
	plan, err := p.planRepo.GetPlanByCode(ctx, planCode)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, utils.ErrPlanNotFound
	}

	amount := plan.PriceMinor
	if amount <= 0 {
		return nil, fmt.Errorf("plan %s is not billable (amount=%d)", planCode, amount)
	}

	// payOS expects an int64 order code; keep it within 13 digits.
	orderCode := time.Now().Unix()%1_000_000_000 + int64(rand.Intn(9000)+1000)

	// Pending Transaction first; ProviderTxnID links local record <-> order.
	txn := &dbm.Transaction{
		AccountID:     accountID,
		AmountMinor:   amount,
		Currency:      strings.ToUpper(plan.Currency),
		Status:        dbm.TxnStatusPending,
		Provider:      p.cfg.ProviderName,
		ProviderTxnID: fmt.Sprintf("payos:%d", orderCode),
	}

	if err := p.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	item := payos.Item{
		Name:     fmt.Sprintf("%s (%s)", plan.Name, plan.Code),
		Price:    int(amount),
		Quantity: 1,
	}

	body := payos.CheckoutRequestType{
		OrderCode:   orderCode,
		Amount:      int(amount),
		Items:       []payos.Item{item},
		Description: fmt.Sprintf("Subscription %s", plan.Code),
		CancelUrl:   p.cfg.CancelURL,
		ReturnUrl:   p.cfg.ReturnURL,
	}

	if err := payos.Key(p.cfg.ClientID, p.cfg.ApiKey, p.cfg.ChecksumKey); err != nil {
		return nil, fmt.Errorf("payos client init: %w", err)
	}

	resp, err := payos.CreatePaymentLink(body)
	if err != nil {
		_ = p.db.WithContext(ctx).Model(txn).
			Updates(map[string]interface{}{"status": dbm.TxnStatusFailed}).Error
		return nil, fmt.Errorf("payos create link: %w", err)
	}

	meta := map[string]any{
		"plan_id":   plan.ID,
		"plan_code": plan.Code,
		"tier_code": plan.TierCode,
	}
	if bytes, _ := json.Marshal(meta); bytes != nil {
		_ = p.db.WithContext(ctx).Model(txn).Update("metadata", bytes).Error
	}

	return &response_models.CreateCheckoutResponse{
		OrderCode:    orderCode,
		Amount:       amount,
		PaymentURL:   resp.CheckoutUrl,
		ProviderName: p.cfg.ProviderName,
	}, nil
}

// GetSubscriptionStatus returns the caller's most recent subscription, or
// nil data when the account has never purchased a plan.
func (p *paymentService) GetSubscriptionStatus(ctx context.Context, accountID uuid.UUID) (*response_models.SubscriptionStatusResponse, error) {
	var sub dbm.Subscription
	err := p.db.WithContext(ctx).
		Preload("Plan").
		Where("account_id = ?", accountID).
		Order("ends_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	status := sub.Status
	if status == dbm.SubStatusActive && sub.EndsAt < time.Now().Unix() {
		status = dbm.SubStatusExpired
	}

	return &response_models.SubscriptionStatusResponse{
		AccountID: sub.AccountID,
		PlanCode:  sub.Plan.Code,
		Status:    string(status),
		StartsAt:  sub.StartsAt,
		EndsAt:    sub.EndsAt,
		AutoRenew: sub.AutoRenew,
	}, nil
}

func (p *paymentService) HandleWebhook(c *gin.Context) {
	if err := payos.Key(p.cfg.ClientID, p.cfg.ApiKey, p.cfg.ChecksumKey); err != nil {
		logrus.WithError(err).Error("payos key init failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Provider misconfigured"})
		return
	}

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	var body payos.WebhookType
	if err := json.Unmarshal(rawBody, &body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	data, payosErr := payos.VerifyPaymentWebhookData(body)
	if payosErr != nil {
		logrus.WithError(payosErr).Warn("webhook signature verification failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to verify webhook data"})
		return
	}

	// payOS sends a fixed test order when the webhook URL is registered.
	if data.OrderCode == 123 {
		c.JSON(http.StatusOK, gin.H{"message": "Webhook confirmed"})
		return
	}

	providerTxn := fmt.Sprintf("payos:%d", data.OrderCode)

	var txn dbm.Transaction
	if err := p.db.
		Where("provider_txn_id = ?", providerTxn).
		First(&txn).Error; err != nil {
		// Ack 200 to avoid a retry storm, but log for investigation.
		logrus.WithField("order_code", data.OrderCode).Warn("webhook: transaction not found")
		c.JSON(http.StatusOK, gin.H{"message": "ignored"})
		return
	}

	// Idempotency: a transaction already marked paid is a duplicate event.
	if txn.Status == dbm.TxnStatusPaid {
		c.JSON(http.StatusOK, gin.H{"message": "already processed"})
		return
	}

	now := time.Now().Unix()
	err = p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&txn).Updates(map[string]interface{}{
			"status":  dbm.TxnStatusPaid,
			"paid_at": now,
		}).Error; err != nil {
			return err
		}
		return p.activateSubscription(c.Request.Context(), tx, &txn)
	})
	if err != nil {
		logrus.WithError(err).WithField("order_code", data.OrderCode).Error("webhook: failed to process transaction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "processed"})
}

// activateSubscription records the billing window and maps the purchased
// plan down to its entitlement tier. Tier changes go through the
// entitlement service only; no direct field writes from here.
func (p *paymentService) activateSubscription(ctx context.Context, tx *gorm.DB, txn *dbm.Transaction) error {
	type meta struct {
		PlanID   uuid.UUID `json:"plan_id"`
		PlanCode string    `json:"plan_code"`
	}
	var m meta
	if err := json.Unmarshal(txn.Metadata, &m); err != nil || m.PlanCode == "" {
		return fmt.Errorf("missing plan info in transaction metadata")
	}

	var plan dbm.Plan
	if err := tx.Where("id = ? AND is_active = TRUE", m.PlanID).First(&plan).Error; err != nil {
		return fmt.Errorf("plan not found while activating: %w", err)
	}

	starts := time.Now().UTC()

	// Extend from the end of a still-running auto-renewing subscription.
	var current dbm.Subscription
	err := tx.
		Where("account_id = ? AND status IN ? AND ends_at >= ?",
			txn.AccountID,
			[]dbm.SubscriptionStatus{dbm.SubStatusActive, dbm.SubStatusTrialing, dbm.SubStatusPastDue},
			starts.Add(-24*time.Hour).Unix()).
		Order("ends_at DESC").
		First(&current).Error
	if err == nil && current.Status == dbm.SubStatusActive && current.AutoRenew && current.EndsAt > starts.Unix() {
		starts = time.Unix(current.EndsAt, 0).UTC()
	}

	var ends time.Time
	switch plan.Period {
	case dbm.PeriodYear:
		ends = starts.AddDate(1, 0, 0)
	case dbm.PeriodOnce:
		// Lifetime purchases get a far-future window.
		ends = starts.AddDate(100, 0, 0)
	default:
		ends = starts.AddDate(0, 1, 0)
	}

	sub := dbm.Subscription{
		AccountID: txn.AccountID,
		PlanID:    plan.ID,
		Status:    dbm.SubStatusActive,
		StartsAt:  starts.Unix(),
		EndsAt:    ends.Unix(),
		AutoRenew: plan.Period != dbm.PeriodOnce,

		Provider:      p.cfg.ProviderName,
		ProviderSubID: strconv.FormatInt(time.Now().UnixNano(), 10),

		Metadata: jsonRaw(map[string]any{
			"activated_by_txn": txn.ID,
			"amount_minor":     txn.AmountMinor,
			"currency":         txn.Currency,
		}),
	}

	if err := tx.Create(&sub).Error; err != nil {
		return err
	}

	if _, err := p.entitlements.ChangeTier(ctx, txn.AccountID, plan.TierCode,
		fmt.Sprintf("payment %s for plan %s", txn.ProviderTxnID, plan.Code)); err != nil {
		return fmt.Errorf("tier activation: %w", err)
	}

	return nil
}

func jsonRaw(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
