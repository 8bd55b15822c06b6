package account_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"tweettocourse/internal/repositories"
	"tweettocourse/internal/services"
	mem "tweettocourse/pkg/memcache"
)

var Module = fx.Provide(
	provideAccountService, provideAccountRepo)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideAccountService(accountRepo repositories.AccountRepository, mailService services.IMailService, memcache mem.ResetTokenStore) services.AccountServiceInterface {
	return services.NewAccountService(accountRepo, mailService, memcache)
}
