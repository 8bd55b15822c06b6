package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweettocourse/internal/models/db_models"
	"tweettocourse/internal/models/request_models"
	"tweettocourse/pkg/utils"
)

func exportFixture(t *testing.T, tier db_models.SubscriptionTier) (*db_models.Account, *db_models.Course, ExportServiceInterface) {
	t.Helper()

	account := testAccount(tier, 0)
	accountRepo := newFakeAccountRepo(account)
	courseRepo := newFakeCourseRepo()

	sections, err := json.Marshal([]utils.GeneratedSection{
		{Title: "Part 1", Summary: "Intro", Takeaways: []string{"first takeaway"}},
		{Title: "Part 2", Summary: "Depth", Takeaways: []string{"second takeaway"}},
	})
	require.NoError(t, err)

	course := &db_models.Course{
		AccountID:    account.ID,
		Title:        "Thread Writing 101",
		SourceAuthor: "educator",
		TweetCount:   12,
		Sections:     sections,
	}
	require.NoError(t, courseRepo.Create(context.Background(), course))

	service := NewExportService(courseRepo, accountRepo, NewEntitlementService(accountRepo))
	return account, course, service
}

func TestExportPDF_FreeTierWatermarked(t *testing.T) {
	account, course, service := exportFixture(t, db_models.TierFree)

	data, filename, err := service.ExportPDF(context.Background(), account.ID, request_models.ExportPDFRequest{
		CourseID: course.ID.String(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "course-"+course.ID.String()+".pdf", filename)
}

func TestExportPDF_BrandingRequiresEntitlement(t *testing.T) {
	account, course, service := exportFixture(t, db_models.TierFree)

	_, _, err := service.ExportPDF(context.Background(), account.ID, request_models.ExportPDFRequest{
		CourseID:  course.ID.String(),
		BrandName: "Acme Academy",
	})
	assert.ErrorIs(t, err, utils.ErrFeatureNotEntitled)
}

func TestExportPDF_ProBranded(t *testing.T) {
	account, course, service := exportFixture(t, db_models.TierPro)

	data, _, err := service.ExportPDF(context.Background(), account.ID, request_models.ExportPDFRequest{
		CourseID:   course.ID.String(),
		BrandName:  "Acme Academy",
		BrandColor: "#336699",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestExportPDF_NotOwner(t *testing.T) {
	account := testAccount(db_models.TierPro, 0)
	accountRepo := newFakeAccountRepo(account)
	_, course, _ := exportFixture(t, db_models.TierPro)

	service := NewExportService(newFakeCourseRepo(), accountRepo, NewEntitlementService(accountRepo))

	_, _, err := service.ExportPDF(context.Background(), account.ID, request_models.ExportPDFRequest{
		CourseID: course.ID.String(),
	})
	assert.ErrorIs(t, err, utils.ErrCourseNotFound)
}

func TestExportNotion_FreeTierBlocked(t *testing.T) {
	account, course, service := exportFixture(t, db_models.TierFree)

	_, err := service.ExportNotion(context.Background(), account.ID, request_models.ExportNotionRequest{
		CourseID:     course.ID.String(),
		NotionToken:  "secret_abc",
		ParentPageID: "page-1",
	})
	assert.ErrorIs(t, err, utils.ErrFeatureNotEntitled)
}

func TestParseHexColor(t *testing.T) {
	r, g, b := parseHexColor("#336699")
	assert.Equal(t, []int{0x33, 0x66, 0x99}, []int{r, g, b})

	r, g, b = parseHexColor("ff0000")
	assert.Equal(t, []int{255, 0, 0}, []int{r, g, b})

	// Unparseable input falls back to the default ink color.
	r, g, b = parseHexColor("red")
	assert.Equal(t, []int{33, 37, 41}, []int{r, g, b})
}
