package impact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"carbondesk/buyer-portal/buyer-portal-backend/internal/auth"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListCompletedPurchases(ctx context.Context, buyerID uuid.UUID, period *ReportPeriod) ([]Purchase, error) {
	args := m.Called(ctx, buyerID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Purchase), args.Error(1)
}

func (m *MockRepository) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Project), args.Error(1)
}

func (m *MockRepository) ListProgressUpdates(ctx context.Context, projectID uuid.UUID, limit int) ([]ProgressUpdate, error) {
	args := m.Called(ctx, projectID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ProgressUpdate), args.Error(1)
}

func (m *MockRepository) GetBuyer(ctx context.Context, id uuid.UUID) (*Buyer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Buyer), args.Error(1)
}

func (m *MockRepository) SaveReport(ctx context.Context, report *BuyerImpactReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockRepository) GetReport(ctx context.Context, id uuid.UUID) (*BuyerImpactReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BuyerImpactReport), args.Error(1)
}

func (m *MockRepository) ListReports(ctx context.Context, filters *ReportFilters) ([]ReportSummary, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ReportSummary), args.Error(1)
}

func (m *MockRepository) UpdateReportStatus(ctx context.Context, id uuid.UUID, status ReportStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRepository) ListExpiredReports(ctx context.Context, asOf time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockRepository) SaveCertificate(ctx context.Context, cert *ImpactCertificate) error {
	args := m.Called(ctx, cert)
	return args.Error(0)
}

func (m *MockRepository) GetCertificate(ctx context.Context, id uuid.UUID) (*ImpactCertificate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ImpactCertificate), args.Error(1)
}

func (m *MockRepository) ListCertificates(ctx context.Context, buyerID uuid.UUID) ([]*ImpactCertificate, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ImpactCertificate), args.Error(1)
}

func newTestService(repo Repository) *Service {
	return NewService(repo, DefaultEngineConfig(), zap.NewNop())
}

func buyerIdentity(buyerID uuid.UUID) *auth.Identity {
	return &auth.Identity{UserID: buyerID, Name: "Test Buyer", Role: auth.RoleCreditBuyer}
}

// =====================================================
// Access Control
// =====================================================

func TestAccessControlRejectsStrangers(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()

	buyerID := uuid.New()
	stranger := &auth.Identity{UserID: uuid.New(), Role: auth.RoleCreditBuyer}

	_, err := service.GenerateReport(ctx, stranger, &GenerateReportRequest{BuyerID: buyerID})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = service.ListReports(ctx, stranger, &ReportFilters{BuyerID: buyerID})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = service.IssueCertificate(ctx, stranger, &IssueCertificateRequest{BuyerID: buyerID})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = service.ListCertificates(ctx, stranger, buyerID)
	assert.ErrorIs(t, err, ErrForbidden)

	// No repository call happens before the access check
	mockRepo.AssertNotCalled(t, "ListCompletedPurchases", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccessControlRejectsAnonymous(t *testing.T) {
	service := newTestService(new(MockRepository))
	ctx := context.Background()

	_, err := service.GenerateReport(ctx, nil, &GenerateReportRequest{BuyerID: uuid.New()})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = service.GetReport(ctx, nil, uuid.New())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAccessControlAllowsStaff(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()

	buyerID := uuid.New()
	mockRepo.On("ListReports", ctx, mock.AnythingOfType("*impact.ReportFilters")).Return([]ReportSummary{}, nil)

	for _, role := range []auth.Role{auth.RoleAdmin, auth.RoleVerifier} {
		staff := &auth.Identity{UserID: uuid.New(), Role: role}
		_, err := service.ListReports(ctx, staff, &ReportFilters{BuyerID: buyerID})
		assert.NoError(t, err)
	}
}

// =====================================================
// Report Generation
// =====================================================

func TestGenerateReport(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	fixed := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	ctx := context.Background()
	buyerID := uuid.New()
	solarID := uuid.New()
	forestID := uuid.New()

	purchases := []Purchase{
		buildPurchase(buyerID, solarID, 100, 3000, fixed.AddDate(0, -3, 0)),
		buildPurchase(buyerID, forestID, 50, 1500, fixed.AddDate(0, -1, 0)),
	}
	mockRepo.On("ListCompletedPurchases", ctx, buyerID, (*ReportPeriod)(nil)).Return(purchases, nil)
	mockRepo.On("GetProject", ctx, solarID).Return(buildProject(solarID, ProjectTypeSolar, ProjectStatusActive, "Kenya"), nil)
	mockRepo.On("GetProject", ctx, forestID).Return(buildProject(forestID, ProjectTypeReforestation, ProjectStatusCompleted, "Brazil"), nil)
	mockRepo.On("ListProgressUpdates", ctx, solarID, 0).Return([]ProgressUpdate{
		buildUpdate(solarID, "Latest", 200, 40, fixed.AddDate(0, 0, -7)),
	}, nil)
	mockRepo.On("ListProgressUpdates", ctx, forestID, 0).Return([]ProgressUpdate{}, nil)
	mockRepo.On("GetBuyer", ctx, buyerID).Return(&Buyer{ID: buyerID, Name: "Green Holdings"}, nil)
	mockRepo.On("SaveReport", ctx, mock.AnythingOfType("*impact.BuyerImpactReport")).Return(nil)

	report, err := service.GenerateReport(ctx, buyerIdentity(buyerID), &GenerateReportRequest{BuyerID: buyerID})

	assert.NoError(t, err)
	assert.NotNil(t, report)
	assert.Equal(t, "Green Holdings", report.BuyerName)
	assert.Equal(t, ReportTypeComprehensive, report.ReportType)
	assert.Equal(t, ReportStatusFinal, report.Status)
	assert.Equal(t, fixed, report.GeneratedAt)
	assert.Equal(t, fixed.AddDate(0, 0, ReportExpiryDays), report.ExpiresAt)
	assert.Equal(t, 150.0, report.Portfolio.TotalCreditsOwned)
	assert.Len(t, report.ProjectSummaries, 2)
	assert.Equal(t, 200.0, report.TotalImpact.TotalCarbonOffset)
	assert.Len(t, report.Comparisons, 4)
	mockRepo.AssertCalled(t, "SaveReport", ctx, mock.AnythingOfType("*impact.BuyerImpactReport"))
}

func TestGenerateReportUnknownBuyer(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()
	buyerID := uuid.New()

	mockRepo.On("ListCompletedPurchases", ctx, buyerID, (*ReportPeriod)(nil)).Return([]Purchase{}, nil)
	mockRepo.On("GetBuyer", ctx, buyerID).Return(nil, ErrNotFound)
	mockRepo.On("SaveReport", ctx, mock.AnythingOfType("*impact.BuyerImpactReport")).Return(nil)

	report, err := service.GenerateReport(ctx, buyerIdentity(buyerID), &GenerateReportRequest{BuyerID: buyerID})

	assert.NoError(t, err)
	assert.Equal(t, "Unknown Buyer", report.BuyerName)
	assert.Zero(t, report.Portfolio.TotalCreditsOwned)
	assert.Equal(t, RiskLevelHigh, report.Portfolio.Risk.OverallRisk)
}

func TestGenerateReportSkipsFailedProjects(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()
	buyerID := uuid.New()
	goodID := uuid.New()
	badID := uuid.New()
	now := time.Now()

	purchases := []Purchase{
		buildPurchase(buyerID, goodID, 60, 1200, now),
		buildPurchase(buyerID, badID, 40, 800, now),
	}
	mockRepo.On("ListCompletedPurchases", ctx, buyerID, (*ReportPeriod)(nil)).Return(purchases, nil)
	mockRepo.On("GetProject", ctx, goodID).Return(buildProject(goodID, ProjectTypeWind, ProjectStatusActive, "Chile"), nil)
	mockRepo.On("GetProject", ctx, badID).Return(nil, errors.New("connection reset"))
	mockRepo.On("ListProgressUpdates", ctx, goodID, 0).Return([]ProgressUpdate{}, nil)
	mockRepo.On("GetBuyer", ctx, buyerID).Return(&Buyer{ID: buyerID, Name: "Partial Data Ltd"}, nil)
	mockRepo.On("SaveReport", ctx, mock.AnythingOfType("*impact.BuyerImpactReport")).Return(nil)

	report, err := service.GenerateReport(ctx, buyerIdentity(buyerID), &GenerateReportRequest{BuyerID: buyerID})

	assert.NoError(t, err)
	assert.Len(t, report.ProjectSummaries, 1)
	assert.Equal(t, goodID, report.ProjectSummaries[0].ProjectID)
	assert.Equal(t, 60.0, report.Portfolio.TotalCreditsOwned)
}

// =====================================================
// Lifecycle Transitions
// =====================================================

func TestTransitionReport(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()
	buyerID := uuid.New()
	reportID := uuid.New()

	stored := &BuyerImpactReport{ID: reportID, BuyerID: buyerID, Status: ReportStatusFinal}
	mockRepo.On("GetReport", ctx, reportID).Return(stored, nil)
	mockRepo.On("UpdateReportStatus", ctx, reportID, ReportStatusCertified).Return(nil)

	report, err := service.TransitionReport(ctx, buyerIdentity(buyerID), reportID, ReportStatusCertified)

	assert.NoError(t, err)
	assert.Equal(t, ReportStatusCertified, report.Status)
}

func TestTransitionReportInvalid(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()
	buyerID := uuid.New()
	reportID := uuid.New()

	stored := &BuyerImpactReport{ID: reportID, BuyerID: buyerID, Status: ReportStatusArchived}
	mockRepo.On("GetReport", ctx, reportID).Return(stored, nil)

	_, err := service.TransitionReport(ctx, buyerIdentity(buyerID), reportID, ReportStatusFinal)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	mockRepo.AssertNotCalled(t, "UpdateReportStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiveExpiredReports(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()

	expired := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	mockRepo.On("ListExpiredReports", ctx, mock.AnythingOfType("time.Time"), 100).Return(expired, nil)
	mockRepo.On("UpdateReportStatus", ctx, expired[0], ReportStatusArchived).Return(nil)
	mockRepo.On("UpdateReportStatus", ctx, expired[1], ReportStatusArchived).Return(errors.New("row locked"))
	mockRepo.On("UpdateReportStatus", ctx, expired[2], ReportStatusArchived).Return(nil)

	archived, err := service.ArchiveExpiredReports(ctx, 100)

	assert.NoError(t, err)
	assert.Equal(t, 2, archived)
}

// =====================================================
// Certificates
// =====================================================

func TestIssueCertificateService(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()
	buyerID := uuid.New()
	projectID := uuid.New()

	purchases := []Purchase{buildPurchase(buyerID, projectID, 75, 1500, time.Now())}
	mockRepo.On("ListCompletedPurchases", ctx, buyerID, (*ReportPeriod)(nil)).Return(purchases, nil)
	mockRepo.On("GetBuyer", ctx, buyerID).Return(&Buyer{ID: buyerID, Name: "Acme"}, nil)
	mockRepo.On("SaveCertificate", ctx, mock.AnythingOfType("*impact.ImpactCertificate")).Return(nil)

	cert, err := service.IssueCertificate(ctx, buyerIdentity(buyerID), &IssueCertificateRequest{BuyerID: buyerID})

	assert.NoError(t, err)
	assert.NotNil(t, cert)
	assert.Equal(t, 75.0, cert.Quantification)
	mockRepo.AssertCalled(t, "SaveCertificate", ctx, mock.AnythingOfType("*impact.ImpactCertificate"))
}

func TestIssueCertificateNoPurchases(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()
	buyerID := uuid.New()

	mockRepo.On("ListCompletedPurchases", ctx, buyerID, (*ReportPeriod)(nil)).Return([]Purchase{}, nil)
	mockRepo.On("GetBuyer", ctx, buyerID).Return(&Buyer{ID: buyerID, Name: "Acme"}, nil)

	cert, err := service.IssueCertificate(ctx, buyerIdentity(buyerID), &IssueCertificateRequest{BuyerID: buyerID})

	assert.NoError(t, err)
	assert.Nil(t, cert)
	mockRepo.AssertNotCalled(t, "SaveCertificate", mock.Anything, mock.Anything)
}

func TestGetCertificateForbiddenForOtherBuyer(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()
	certID := uuid.New()
	ownerID := uuid.New()

	mockRepo.On("GetCertificate", ctx, certID).Return(&ImpactCertificate{ID: certID, BuyerID: ownerID}, nil)

	_, err := service.GetCertificate(ctx, buyerIdentity(uuid.New()), certID)

	assert.ErrorIs(t, err, ErrForbidden)
}
