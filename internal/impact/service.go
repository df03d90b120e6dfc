package impact

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbondesk/buyer-portal/buyer-portal-backend/internal/auth"
	"carbondesk/buyer-portal/buyer-portal-backend/pkg/workflows"
)

// projectFetchWorkers bounds the fan-out when loading project records and
// progress updates for a report.
const projectFetchWorkers = 4

// Service orchestrates report assembly and enforces the buyer access rule
type Service struct {
	repo   Repository
	sm     *workflows.StateMachine
	logger *zap.Logger

	aggregator  *Aggregator
	summarizer  *Summarizer
	calculator  *Calculator
	issuer      *Issuer
	recommender *Recommender
	comparator  *Comparator

	now func() time.Time
}

// NewService creates a new impact service
func NewService(repo Repository, cfg EngineConfig, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		sm:          workflows.NewReportStateMachine(),
		logger:      logger,
		aggregator:  NewAggregator(cfg),
		summarizer:  NewSummarizer(),
		calculator:  NewCalculator(cfg),
		issuer:      NewIssuer(cfg),
		recommender: NewRecommender(cfg),
		comparator:  NewComparator(cfg),
		now:         time.Now,
	}
}

// authorize applies the buyer access rule shared by every entry point:
// the caller must be the buyer, or hold the admin or verifier role.
func authorize(identity *auth.Identity, buyerID uuid.UUID) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !identity.CanAccessBuyer(buyerID) {
		return ErrForbidden
	}
	return nil
}

// =====================================================
// Report Generation
// =====================================================

// GenerateReport assembles, persists and returns a new impact report for
// the buyer. A missing buyer profile downgrades to a placeholder name;
// projects that fail to load are excluded rather than failing the report.
func (s *Service) GenerateReport(ctx context.Context, identity *auth.Identity, req *GenerateReportRequest) (*BuyerImpactReport, error) {
	if err := authorize(identity, req.BuyerID); err != nil {
		return nil, err
	}

	reportType := req.ReportType
	if reportType == "" {
		reportType = ReportTypeComprehensive
	}

	purchases, err := s.repo.ListCompletedPurchases(ctx, req.BuyerID, req.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}

	projects, updates := s.loadProjectData(ctx, purchases)

	// Drop purchases whose project could not be loaded so every downstream
	// stage sees a consistent view.
	retained := make([]Purchase, 0, len(purchases))
	for _, p := range purchases {
		if _, ok := projects[p.ProjectID]; ok {
			retained = append(retained, p)
		}
	}

	portfolio := s.aggregator.BuildPortfolio(retained, projects)

	summaries := make([]ProjectImpactSummary, 0, len(projects))
	for _, projectID := range distinctProjectIDs(retained) {
		project := projects[projectID]
		projectPurchases := make([]Purchase, 0, 4)
		for _, p := range retained {
			if p.ProjectID == projectID {
				projectPurchases = append(projectPurchases, p)
			}
		}
		summaries = append(summaries, s.summarizer.Summarize(project, projectPurchases, updates[projectID]))
	}

	totalImpact := s.calculator.CalculateTotalImpact(summaries)
	recommendations := s.recommender.Recommend(&portfolio, summaries)
	comparisons := s.comparator.Compare(&portfolio, &totalImpact)
	sustainability := deriveSustainability(&portfolio, &totalImpact, summaries)

	buyerName := "Unknown Buyer"
	if buyer, err := s.repo.GetBuyer(ctx, req.BuyerID); err != nil {
		s.logger.Warn("Buyer profile unavailable, using placeholder name",
			zap.String("buyer_id", req.BuyerID.String()),
			zap.Error(err))
	} else {
		buyerName = buyer.Name
	}

	generatedBy := "system"
	if identity.Name != "" {
		generatedBy = identity.Name
	}

	now := s.now()
	report := &BuyerImpactReport{
		ID:               uuid.New(),
		BuyerID:          req.BuyerID,
		BuyerName:        buyerName,
		ReportType:       reportType,
		Period:           req.Period,
		Portfolio:        portfolio,
		ProjectSummaries: summaries,
		TotalImpact:      totalImpact,
		Recommendations:  recommendations,
		Comparisons:      comparisons,
		Sustainability:   sustainability,
		GeneratedBy:      generatedBy,
		GeneratedAt:      now,
		ExpiresAt:        now.AddDate(0, 0, ReportExpiryDays),
		Status:           ReportStatusFinal,
	}

	if err := s.repo.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}

	s.logger.Info("Impact report generated",
		zap.String("report_id", report.ID.String()),
		zap.String("buyer_id", req.BuyerID.String()),
		zap.String("report_type", string(reportType)),
		zap.Int("project_count", len(summaries)),
		zap.Float64("total_carbon_offset", totalImpact.TotalCarbonOffset))

	return report, nil
}

// loadProjectData fetches project records and their recent progress updates
// with bounded parallelism. Projects that fail to load are skipped; the
// report is assembled from whatever loaded cleanly.
func (s *Service) loadProjectData(ctx context.Context, purchases []Purchase) (map[uuid.UUID]*Project, map[uuid.UUID][]ProgressUpdate) {
	projectIDs := distinctProjectIDs(purchases)

	projects := make(map[uuid.UUID]*Project, len(projectIDs))
	updates := make(map[uuid.UUID][]ProgressUpdate, len(projectIDs))

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, projectFetchWorkers)

	for _, id := range projectIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(projectID uuid.UUID) {
			defer wg.Done()
			defer func() { <-sem }()

			project, err := s.repo.GetProject(ctx, projectID)
			if err != nil {
				s.logger.Warn("Skipping project that failed to load",
					zap.String("project_id", projectID.String()),
					zap.Error(err))
				return
			}

			progress, err := s.repo.ListProgressUpdates(ctx, projectID, 0)
			if err != nil {
				s.logger.Warn("Progress updates unavailable for project",
					zap.String("project_id", projectID.String()),
					zap.Error(err))
				progress = nil
			}

			mu.Lock()
			projects[projectID] = project
			updates[projectID] = progress
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	return projects, updates
}

// distinctProjectIDs returns the distinct project ids in first-seen order
func distinctProjectIDs(purchases []Purchase) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(purchases))
	ids := make([]uuid.UUID, 0, len(purchases))
	for _, p := range purchases {
		if !seen[p.ProjectID] {
			seen[p.ProjectID] = true
			ids = append(ids, p.ProjectID)
		}
	}
	return ids
}

// =====================================================
// Report Read-Back
// =====================================================

// GetReport retrieves a stored report, gated by the same access rule as
// generation.
func (s *Service) GetReport(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*BuyerImpactReport, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	report, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorize(identity, report.BuyerID); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports lists report summaries for a buyer, newest first
func (s *Service) ListReports(ctx context.Context, identity *auth.Identity, filters *ReportFilters) ([]ReportSummary, error) {
	if err := authorize(identity, filters.BuyerID); err != nil {
		return nil, err
	}

	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 20
	}

	return s.repo.ListReports(ctx, filters)
}

// TransitionReport moves a report to a later lifecycle status. Content is
// frozen at final; certification and archival only change the status.
func (s *Service) TransitionReport(ctx context.Context, identity *auth.Identity, id uuid.UUID, target ReportStatus) (*BuyerImpactReport, error) {
	report, err := s.GetReport(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if !s.sm.CanTransition(string(report.Status), string(target)) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, report.Status, target)
	}

	if err := s.repo.UpdateReportStatus(ctx, id, target); err != nil {
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}

	s.logger.Info("Report status changed",
		zap.String("report_id", id.String()),
		zap.String("from", string(report.Status)),
		zap.String("to", string(target)))

	report.Status = target
	return report, nil
}

// ArchiveExpiredReports archives reports whose expiry has passed. Called by
// the background worker; returns the number of reports archived.
func (s *Service) ArchiveExpiredReports(ctx context.Context, limit int) (int, error) {
	ids, err := s.repo.ListExpiredReports(ctx, s.now(), limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired reports: %w", err)
	}

	archived := 0
	for _, id := range ids {
		if err := s.repo.UpdateReportStatus(ctx, id, ReportStatusArchived); err != nil {
			s.logger.Error("Failed to archive expired report",
				zap.String("report_id", id.String()),
				zap.Error(err))
			continue
		}
		archived++
	}

	if archived > 0 {
		s.logger.Info("Archived expired reports", zap.Int("count", archived))
	}
	return archived, nil
}

// =====================================================
// Certificates
// =====================================================

// IssueCertificate issues an offset certificate backed by the buyer's
// completed purchases. A buyer with no qualifying offsets gets no
// certificate and no error.
func (s *Service) IssueCertificate(ctx context.Context, identity *auth.Identity, req *IssueCertificateRequest) (*ImpactCertificate, error) {
	if err := authorize(identity, req.BuyerID); err != nil {
		return nil, err
	}

	purchases, err := s.repo.ListCompletedPurchases(ctx, req.BuyerID, req.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}

	var buyer *Buyer
	if buyer, err = s.repo.GetBuyer(ctx, req.BuyerID); err != nil {
		s.logger.Warn("Buyer profile unavailable for certificate",
			zap.String("buyer_id", req.BuyerID.String()),
			zap.Error(err))
		buyer = &Buyer{ID: req.BuyerID, Name: "Unknown Buyer"}
	}

	cert := s.issuer.Issue(buyer, req, purchases)
	if cert == nil {
		s.logger.Info("No qualifying offsets, certificate not issued",
			zap.String("buyer_id", req.BuyerID.String()))
		return nil, nil
	}

	if err := s.repo.SaveCertificate(ctx, cert); err != nil {
		return nil, fmt.Errorf("failed to persist certificate: %w", err)
	}

	s.logger.Info("Impact certificate issued",
		zap.String("certificate_id", cert.ID.String()),
		zap.String("buyer_id", req.BuyerID.String()),
		zap.String("serial_number", cert.SerialNumber),
		zap.Float64("quantification", cert.Quantification))

	return cert, nil
}

// GetCertificate retrieves a stored certificate, access-gated by its buyer
func (s *Service) GetCertificate(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*ImpactCertificate, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	cert, err := s.repo.GetCertificate(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorize(identity, cert.BuyerID); err != nil {
		return nil, err
	}
	return cert, nil
}

// ListCertificates lists a buyer's certificates, newest first
func (s *Service) ListCertificates(ctx context.Context, identity *auth.Identity, buyerID uuid.UUID) ([]*ImpactCertificate, error) {
	if err := authorize(identity, buyerID); err != nil {
		return nil, err
	}
	return s.repo.ListCertificates(ctx, buyerID)
}

// =====================================================
// Sustainability Scoring
// =====================================================

// deriveSustainability scores the portfolio on ESG-style axes from the
// already-computed portfolio and impact totals.
func deriveSustainability(portfolio *BuyerPortfolio, total *TotalImpactSummary, summaries []ProjectImpactSummary) SustainabilityMetrics {
	metrics := SustainabilityMetrics{
		ReportingFrameworks: []string{"GHG Protocol", "CDP Climate Change"},
	}
	if portfolio.TotalCreditsOwned == 0 {
		return metrics
	}

	environmental := math.Min(100, 50+portfolio.Risk.DiversificationScore*0.5)
	social := math.Min(100, float64(len(total.SocialBenefits))*25)
	governance := 70.0
	if portfolio.Performance.Outperforming {
		governance += 15
	}

	documented := 0
	for _, summary := range summaries {
		if len(summary.RecentUpdates) > 0 {
			documented++
		}
	}
	transparency := 0.0
	if len(summaries) > 0 {
		transparency = float64(documented) / float64(len(summaries)) * 100
	}

	metrics.EnvironmentalAlignment = round2(environmental)
	metrics.SocialAlignment = round2(social)
	metrics.GovernanceAlignment = round2(governance)
	metrics.TransparencyScore = round2(transparency)
	metrics.ESGScore = round2((environmental + social + governance) / 3)
	return metrics
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
