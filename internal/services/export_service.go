package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/jomei/notionapi"
	"github.com/sirupsen/logrus"
	"tweettocourse/internal/models/db_models"
	"tweettocourse/internal/models/request_models"
	"tweettocourse/internal/repositories"
	"tweettocourse/pkg/utils"
)

// ExportServiceInterface renders owned courses into shareable formats.
// Every export is feature-gated through the entitlement service; exports
// never consume generation quota.
type ExportServiceInterface interface {
	ExportPDF(ctx context.Context, accountID uuid.UUID, request request_models.ExportPDFRequest) ([]byte, string, error)
	ExportNotion(ctx context.Context, accountID uuid.UUID, request request_models.ExportNotionRequest) (string, error)
}

type ExportService struct {
	courseRepo   repositories.ICourseRepository
	accountRepo  repositories.AccountRepository
	entitlements EntitlementServiceInterface
}

func NewExportService(
	courseRepo repositories.ICourseRepository,
	accountRepo repositories.AccountRepository,
	entitlements EntitlementServiceInterface,
) ExportServiceInterface {
	return &ExportService{
		courseRepo:   courseRepo,
		accountRepo:  accountRepo,
		entitlements: entitlements,
	}
}

func (s *ExportService) loadOwnedCourse(ctx context.Context, accountID uuid.UUID, courseID string) (*db_models.Account, *db_models.Course, []utils.GeneratedSection, error) {
	account, err := s.accountRepo.FindById(ctx, accountID.String())
	if err != nil {
		return nil, nil, nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, nil, nil, utils.ErrAccountNotFound
	}

	course, err := s.courseRepo.FindById(ctx, courseID)
	if err != nil {
		return nil, nil, nil, utils.ErrDatabaseError
	}
	if course == nil || course.AccountID != accountID {
		return nil, nil, nil, utils.ErrCourseNotFound
	}

	var sections []utils.GeneratedSection
	if err := json.Unmarshal(course.Sections, &sections); err != nil {
		return nil, nil, nil, utils.ErrDatabaseError
	}

	return account, course, sections, nil
}

func (s *ExportService) ExportPDF(ctx context.Context, accountID uuid.UUID, request request_models.ExportPDFRequest) ([]byte, string, error) {
	account, course, sections, err := s.loadOwnedCourse(ctx, accountID, request.CourseID)
	if err != nil {
		return nil, "", err
	}

	allowed, err := s.entitlements.CanUseFeature(account, db_models.FeaturePDFExport)
	if err != nil {
		return nil, "", err
	}
	if !allowed {
		return nil, "", utils.ErrFeatureNotEntitled
	}

	branded := request.BrandName != "" || request.BrandColor != ""
	if branded {
		ok, err := s.entitlements.CanUseFeature(account, db_models.FeatureCustomBranding)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			return nil, "", utils.ErrFeatureNotEntitled
		}
	}

	watermarkFree, err := s.entitlements.CanUseFeature(account, db_models.FeatureWatermarkFree)
	if err != nil {
		return nil, "", err
	}

	data, err := renderCoursePDF(course, sections, request, !watermarkFree)
	if err != nil {
		logrus.WithError(err).WithField("course_id", course.ID).Error("PDF render failed")
		return nil, "", utils.ErrGenerationFault
	}

	filename := fmt.Sprintf("course-%s.pdf", course.ID)
	return data, filename, nil
}

func renderCoursePDF(course *db_models.Course, sections []utils.GeneratedSection, request request_models.ExportPDFRequest, watermark bool) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(course.Title, true)

	if watermark {
		pdf.SetFooterFunc(func() {
			pdf.SetY(-12)
			pdf.SetFont("Helvetica", "I", 8)
			pdf.SetTextColor(150, 150, 150)
			pdf.CellFormat(0, 8, "Generated with TweetToCourse - upgrade to remove this footer", "", 0, "C", false, 0, "")
		})
	}

	pdf.AddPage()

	r, g, b := 33, 37, 41
	if request.BrandColor != "" {
		r, g, b = parseHexColor(request.BrandColor)
	}
	if request.BrandName != "" {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(0, 8, request.BrandName, "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(r, g, b)
	pdf.MultiCell(0, 10, course.Title, "", "L", false)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 6, fmt.Sprintf("From a thread by @%s (%d tweets)", course.SourceAuthor, course.TweetCount), "", "L", false)
	pdf.Ln(4)

	for i, section := range sections {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(r, g, b)
		pdf.MultiCell(0, 8, fmt.Sprintf("%d. %s", i+1, section.Title), "", "L", false)

		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(33, 37, 41)
		pdf.MultiCell(0, 6, section.Summary, "", "L", false)

		for _, takeaway := range section.Takeaways {
			pdf.MultiCell(0, 6, "  - "+takeaway, "", "L", false)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseHexColor(hex string) (int, int, int) {
	var r, g, b int
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return 33, 37, 41
	}
	return r, g, b
}

func (s *ExportService) ExportNotion(ctx context.Context, accountID uuid.UUID, request request_models.ExportNotionRequest) (string, error) {
	account, course, sections, err := s.loadOwnedCourse(ctx, accountID, request.CourseID)
	if err != nil {
		return "", err
	}

	allowed, err := s.entitlements.CanUseFeature(account, db_models.FeatureNotionExport)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", utils.ErrFeatureNotEntitled
	}

	client := notionapi.NewClient(notionapi.Token(request.NotionToken))

	children := make([]notionapi.Block, 0, len(sections)*2)
	for _, section := range sections {
		children = append(children, notionapi.Heading2Block{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeHeading2,
			},
			Heading2: notionapi.Heading{
				RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: section.Title}}},
			},
		})

		body := section.Summary
		for _, takeaway := range section.Takeaways {
			body += "\n- " + takeaway
		}
		children = append(children, notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeParagraph,
			},
			Paragraph: notionapi.Paragraph{
				RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: body}}},
			},
		})
	}

	page, err := client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(request.ParentPageID),
		},
		Properties: notionapi.Properties{
			"title": notionapi.TitleProperty{
				Type:  notionapi.PropertyTypeTitle,
				Title: []notionapi.RichText{{Text: &notionapi.Text{Content: course.Title}}},
			},
		},
		Children: children,
	})
	if err != nil {
		logrus.WithError(err).WithField("course_id", course.ID).Error("Notion export failed")
		return "", utils.ErrGenerationFault
	}

	logrus.WithFields(logrus.Fields{
		"course_id":  course.ID,
		"account_id": account.ID,
	}).Info("course exported to Notion")

	return page.URL, nil
}
