package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tweettocourse/internal/models/db_models"
	"tweettocourse/internal/repositories"
	"tweettocourse/pkg/utils"
)

// fakeAccountRepo is an in-memory AccountRepository. The usage mutations
// hold a single mutex across check and increment, mirroring the atomicity
// of the production conditional UPDATE.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*db_models.Account
}

var _ repositories.AccountRepository = (*fakeAccountRepo)(nil)

func newFakeAccountRepo(accounts ...*db_models.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: make(map[uuid.UUID]*db_models.Account)}
	for _, account := range accounts {
		repo.accounts[account.ID] = account
	}
	return repo
}

func (f *fakeAccountRepo) InsertTx(account *db_models.Account, ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountRepo) FindById(ctx context.Context, id string) (*db_models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	account, ok := f.accounts[parsed]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccountRepo) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) ListAll(ctx context.Context) ([]db_models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]db_models.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		out = append(out, *account)
	}
	return out, nil
}

func (f *fakeAccountRepo) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			account.PasswordHash = passwordHash
		}
	}
	return nil
}

func (f *fakeAccountRepo) IncrementUsageBelowLimit(ctx context.Context, id uuid.UUID, limit int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok || account.UsageCount >= limit {
		return false, nil
	}
	account.UsageCount++
	account.LastActivityAt = time.Now().Unix()
	return true, nil
}

func (f *fakeAccountRepo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	account.UsageCount++
	account.LastActivityAt = time.Now().Unix()
	return nil
}

func (f *fakeAccountRepo) UpdateTier(ctx context.Context, id uuid.UUID, tier db_models.SubscriptionTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.accounts[id]; ok {
		account.SubscriptionTier = tier
	}
	return nil
}

func (f *fakeAccountRepo) ResetMonthlyUsage(ctx context.Context, id uuid.UUID, periodStart int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.accounts[id]; ok {
		account.UsageCount = 0
		account.UsagePeriodStart = periodStart
	}
	return nil
}

func (f *fakeAccountRepo) ResetAllMonthlyUsage(ctx context.Context, periodStart int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var affected int64
	for _, account := range f.accounts {
		if account.UsagePeriodStart < periodStart {
			account.UsageCount = 0
			account.UsagePeriodStart = periodStart
			affected++
		}
	}
	return affected, nil
}

func testAccount(tier db_models.SubscriptionTier, usage int) *db_models.Account {
	account := &db_models.Account{
		SubscriptionTier: tier,
		UsageCount:       usage,
		Email:            "user@example.com",
	}
	account.ID = uuid.New()
	return account
}

func TestGetPolicy(t *testing.T) {
	service := NewEntitlementService(newFakeAccountRepo())

	policy, err := service.GetPolicy(db_models.TierFree)
	require.NoError(t, err)
	assert.Equal(t, 1, policy.MonthlyGenerationLimit)
	assert.False(t, policy.Unlimited())

	policy, err = service.GetPolicy(db_models.TierPro)
	require.NoError(t, err)
	assert.True(t, policy.Unlimited())

	_, err = service.GetPolicy(db_models.SubscriptionTier("platinum"))
	assert.ErrorIs(t, err, utils.ErrInvalidTier)
}

func TestCanUseFeature_TierPure(t *testing.T) {
	service := NewEntitlementService(newFakeAccountRepo())

	tests := []struct {
		tier    db_models.SubscriptionTier
		feature string
		want    bool
	}{
		{db_models.TierFree, db_models.FeaturePDFExport, true},
		{db_models.TierFree, db_models.FeatureNotionExport, false},
		{db_models.TierFree, db_models.FeatureWatermarkFree, false},
		{db_models.TierFree, db_models.FeatureCustomBranding, false},
		{db_models.TierPro, db_models.FeatureNotionExport, true},
		{db_models.TierPro, db_models.FeatureCustomBranding, true},
		{db_models.TierLifetime, db_models.FeatureWatermarkFree, true},
	}

	for _, tt := range tests {
		// Usage must never influence feature access.
		for _, usage := range []int{0, 1, 999} {
			got, err := service.CanUseFeature(testAccount(tt.tier, usage), tt.feature)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "tier=%s feature=%s usage=%d", tt.tier, tt.feature, usage)
		}
	}
}

func TestCanUseFeature_UnknownFeature(t *testing.T) {
	service := NewEntitlementService(newFakeAccountRepo())

	_, err := service.CanUseFeature(testAccount(db_models.TierPro, 0), "teleport")
	assert.ErrorIs(t, err, utils.ErrUnknownFeature)
}

func TestCanGenerate(t *testing.T) {
	service := NewEntitlementService(newFakeAccountRepo())

	tests := []struct {
		name  string
		tier  db_models.SubscriptionTier
		usage int
		want  bool
	}{
		{"free below limit", db_models.TierFree, 0, true},
		{"free at limit", db_models.TierFree, 1, false},
		{"free past limit", db_models.TierFree, 2, false},
		{"pro ignores high usage", db_models.TierPro, 10_000, true},
		{"lifetime ignores high usage", db_models.TierLifetime, 10_000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.CanGenerate(testAccount(tt.tier, tt.usage)))
		})
	}

	// An unparseable tier can only reach here via a corrupted row; the
	// read-only check fails closed.
	assert.False(t, service.CanGenerate(testAccount(db_models.SubscriptionTier("platinum"), 0)))
}

func TestRecordUsage_IncrementsUntilLimit(t *testing.T) {
	account := testAccount(db_models.TierFree, 0)
	repo := newFakeAccountRepo(account)
	service := NewEntitlementService(repo)

	updated, err := service.RecordUsage(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.UsageCount)

	_, err = service.RecordUsage(context.Background(), account.ID)
	assert.ErrorIs(t, err, utils.ErrQuotaExceeded)

	// Counter untouched by the rejected attempt.
	final, err := repo.FindById(context.Background(), account.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, final.UsageCount)
}

func TestRecordUsage_UnlimitedNeverRejects(t *testing.T) {
	account := testAccount(db_models.TierPro, 0)
	service := NewEntitlementService(newFakeAccountRepo(account))

	for i := 1; i <= 50; i++ {
		updated, err := service.RecordUsage(context.Background(), account.ID)
		require.NoError(t, err)
		assert.Equal(t, i, updated.UsageCount)
	}
}

func TestRecordUsage_AccountNotFound(t *testing.T) {
	service := NewEntitlementService(newFakeAccountRepo())

	_, err := service.RecordUsage(context.Background(), uuid.New())
	assert.ErrorIs(t, err, utils.ErrAccountNotFound)
}

// dropAfterReadRepo deletes the account right after the first read, so the
// unlimited-path increment hits a row that no longer exists.
type dropAfterReadRepo struct {
	*fakeAccountRepo
	reads int
}

func (r *dropAfterReadRepo) FindById(ctx context.Context, id string) (*db_models.Account, error) {
	account, err := r.fakeAccountRepo.FindById(ctx, id)
	r.reads++
	if r.reads == 1 && account != nil {
		r.mu.Lock()
		delete(r.accounts, account.ID)
		r.mu.Unlock()
	}
	return account, err
}

func TestRecordUsage_UnlimitedAccountVanishes(t *testing.T) {
	account := testAccount(db_models.TierPro, 0)
	service := NewEntitlementService(&dropAfterReadRepo{fakeAccountRepo: newFakeAccountRepo(account)})

	_, err := service.RecordUsage(context.Background(), account.ID)
	assert.ErrorIs(t, err, utils.ErrAccountNotFound)
}

// Two goroutines race for the last free-tier slot. Exactly one must win;
// the final count must be 1.
func TestRecordUsage_ConcurrentLastSlot(t *testing.T) {
	account := testAccount(db_models.TierFree, 0)
	repo := newFakeAccountRepo(account)
	service := NewEntitlementService(repo)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.RecordUsage(context.Background(), account.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, rejections int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case err == utils.ErrQuotaExceeded:
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejections)

	final, err := repo.FindById(context.Background(), account.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, final.UsageCount)
}

// Many goroutines against a finite limit: the counter must land exactly on
// the limit and never exceed it.
func TestRecordUsage_ConcurrentBoundedByLimit(t *testing.T) {
	const workers = 20

	account := testAccount(db_models.TierFree, 0)
	repo := newFakeAccountRepo(account)
	service := NewEntitlementService(repo)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = service.RecordUsage(context.Background(), account.ID)
		}()
	}
	wg.Wait()

	final, err := repo.FindById(context.Background(), account.ID.String())
	require.NoError(t, err)
	limit := db_models.TierPolicies[db_models.TierFree].MonthlyGenerationLimit
	assert.Equal(t, limit, final.UsageCount)
}

func TestChangeTier_PreservesUsage(t *testing.T) {
	account := testAccount(db_models.TierFree, 1)
	service := NewEntitlementService(newFakeAccountRepo(account))

	updated, err := service.ChangeTier(context.Background(), account.ID, db_models.TierPro, "upgrade purchase")
	require.NoError(t, err)
	assert.Equal(t, db_models.TierPro, updated.SubscriptionTier)
	assert.Equal(t, 1, updated.UsageCount)

	// Downgrade also leaves the counter alone, even above the new limit.
	updated, err = service.ChangeTier(context.Background(), account.ID, db_models.TierFree, "subscription lapsed")
	require.NoError(t, err)
	assert.Equal(t, db_models.TierFree, updated.SubscriptionTier)
	assert.Equal(t, 1, updated.UsageCount)
}

func TestChangeTier_InvalidTier(t *testing.T) {
	account := testAccount(db_models.TierFree, 0)
	service := NewEntitlementService(newFakeAccountRepo(account))

	_, err := service.ChangeTier(context.Background(), account.ID, db_models.SubscriptionTier("gold"), "")
	assert.ErrorIs(t, err, utils.ErrInvalidTier)
}

func TestResetMonthlyUsage_Idempotent(t *testing.T) {
	account := testAccount(db_models.TierFree, 1)
	service := NewEntitlementService(newFakeAccountRepo(account))

	updated, err := service.ResetMonthlyUsage(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.UsageCount)
	firstPeriod := updated.UsagePeriodStart

	updated, err = service.ResetMonthlyUsage(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.UsageCount)
	assert.Equal(t, firstPeriod, updated.UsagePeriodStart)
}

func TestSnapshot(t *testing.T) {
	account := testAccount(db_models.TierFree, 1)
	service := NewEntitlementService(newFakeAccountRepo(account))

	snapshot, err := service.Snapshot(context.Background(), account.ID)
	require.NoError(t, err)

	assert.Equal(t, account.ID.String(), snapshot.AccountID)
	assert.Equal(t, "free", snapshot.Tier)
	assert.Equal(t, 1, snapshot.UsageCount)
	assert.Equal(t, 1, snapshot.MonthlyLimit)
	assert.False(t, snapshot.Unlimited)
	assert.Equal(t, 0, snapshot.RemainingQuota)
	assert.True(t, snapshot.Features[db_models.FeaturePDFExport])
	assert.False(t, snapshot.Features[db_models.FeatureNotionExport])
}

func TestSnapshot_UnlimitedTier(t *testing.T) {
	account := testAccount(db_models.TierLifetime, 42)
	service := NewEntitlementService(newFakeAccountRepo(account))

	snapshot, err := service.Snapshot(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, snapshot.Unlimited)
	assert.Equal(t, db_models.UnlimitedGenerations, snapshot.RemainingQuota)
	assert.Equal(t, 42, snapshot.UsageCount)
}

// Free account exhausts its quota, upgrades, generates freely, then a new
// billing period restores the counter.
func TestFreeToProLifecycle(t *testing.T) {
	account := testAccount(db_models.TierFree, 0)
	repo := newFakeAccountRepo(account)
	service := NewEntitlementService(repo)
	ctx := context.Background()

	_, err := service.RecordUsage(ctx, account.ID)
	require.NoError(t, err)
	_, err = service.RecordUsage(ctx, account.ID)
	require.ErrorIs(t, err, utils.ErrQuotaExceeded)

	allowed, err := service.CanUseFeature(testAccount(db_models.TierFree, 1), db_models.FeatureNotionExport)
	require.NoError(t, err)
	assert.False(t, allowed)

	upgraded, err := service.ChangeTier(ctx, account.ID, db_models.TierPro, "checkout completed")
	require.NoError(t, err)
	assert.Equal(t, 1, upgraded.UsageCount)

	for i := 0; i < 5; i++ {
		_, err = service.RecordUsage(ctx, account.ID)
		require.NoError(t, err)
	}

	allowed, err = service.CanUseFeature(upgraded, db_models.FeatureNotionExport)
	require.NoError(t, err)
	assert.True(t, allowed)

	reset, err := service.ResetMonthlyUsage(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reset.UsageCount)
	assert.Equal(t, db_models.TierPro, reset.SubscriptionTier)
}
