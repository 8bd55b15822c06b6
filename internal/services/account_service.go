package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"tweettocourse/internal/models/db_models"
	"tweettocourse/internal/models/request_models"
	"tweettocourse/internal/models/response_models"
	"tweettocourse/internal/repositories"
	mem "tweettocourse/pkg/memcache"
	"tweettocourse/pkg/utils"
)

type AccountServiceInterface interface {
	Login(request request_models.LoginRequest, ctx context.Context) (*response_models.AccountLoginResponse, error)
	CreateAccount(ctx context.Context, request request_models.SignUpRequest) error
	ForgotPassword(email string) error
	VerifyOtpToken(request request_models.RequestVerifyOtpToken) error
	VerifyAndConsumeResetToken(ctx context.Context, request request_models.ForgotPasswordRequest) (string, error)
	GetAllAccounts(ctx context.Context) ([]response_models.AccountResponse, error)
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	mailService IMailService
	memcache    mem.ResetTokenStore
}

func NewAccountService(accountRepo repositories.AccountRepository, mailService IMailService, memcache mem.ResetTokenStore) AccountServiceInterface {
	return &AccountService{
		accountRepo: accountRepo,
		mailService: mailService,
		memcache:    memcache,
	}
}

func (a *AccountService) Login(request request_models.LoginRequest, ctx context.Context) (*response_models.AccountLoginResponse, error) {
	account, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	token, err := utils.CreateToken(account.ID, account.Role)
	if err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	return &response_models.AccountLoginResponse{
		Token:             token,
		IsUserHavePremium: account.SubscriptionTier != db_models.TierFree,
	}, nil
}

// CreateAccount provisions a new account on the free tier with zero usage.
func (a *AccountService) CreateAccount(ctx context.Context, request request_models.SignUpRequest) error {
	existingAccount, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if existingAccount != nil {
		return utils.ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return utils.ErrDatabaseError
	}

	newAccount := &db_models.Account{
		Name:             request.DisplayName,
		Email:            request.Email,
		PasswordHash:     hashedPassword,
		Role:             "user",
		SubscriptionTier: db_models.TierFree,
		UsageCount:       0,
		UsagePeriodStart: utils.BillingPeriodStart(time.Now()).Unix(),
	}

	if err := a.accountRepo.InsertTx(newAccount, ctx); err != nil {
		return utils.ErrDatabaseError
	}

	return nil
}

func (a *AccountService) ForgotPassword(email string) error {
	account, err := a.accountRepo.FindByEmail(context.Background(), email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		// Do not leak which emails exist; the controller answers the same
		// either way.
		return nil
	}

	otp, err := utils.GenerateOtpCode(6)
	if err != nil {
		return utils.ErrDatabaseError
	}

	a.memcache.Set(otp, account.Email, 15*time.Minute)

	if err := a.mailService.SendMailToResetPassword(account.Email, otp); err != nil {
		logrus.WithError(err).Warn("failed to send reset mail")
	}

	return nil
}

func (a *AccountService) VerifyOtpToken(request request_models.RequestVerifyOtpToken) error {
	email, ok := a.memcache.Peek(request.Token)
	if !ok || email != request.Email {
		return utils.ErrInvalidResetToken
	}
	return nil
}

func (a *AccountService) VerifyAndConsumeResetToken(ctx context.Context, request request_models.ForgotPasswordRequest) (string, error) {
	email := a.memcache.Consume(request.Token)
	if email == "" || email != request.Email {
		return "", utils.ErrInvalidResetToken
	}

	hashedPassword, err := utils.HashPassword(request.NewPassword)
	if err != nil {
		return "", utils.ErrDatabaseError
	}

	if err := a.accountRepo.UpdatePasswordByEmail(ctx, email, hashedPassword); err != nil {
		return "", utils.ErrDatabaseError
	}

	return email, nil
}

func (a *AccountService) GetAllAccounts(ctx context.Context) ([]response_models.AccountResponse, error) {
	accounts, err := a.accountRepo.ListAll(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	result := make([]response_models.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		result = append(result, response_models.AccountResponse{
			ID:               account.ID.String(),
			Name:             account.Name,
			Email:            account.Email,
			Role:             account.Role,
			SubscriptionTier: string(account.SubscriptionTier),
			UsageCount:       account.UsageCount,
			LastActivityAt:   account.LastActivityAt,
		})
	}

	return result, nil
}
