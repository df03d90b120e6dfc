package impact

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PurchaseStore reads completed purchases from the transaction ledger
type PurchaseStore interface {
	ListCompletedPurchases(ctx context.Context, buyerID uuid.UUID, period *ReportPeriod) ([]Purchase, error)
}

// ProjectStore reads project records
type ProjectStore interface {
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
}

// ProgressStore reads per-project progress updates, newest first
type ProgressStore interface {
	ListProgressUpdates(ctx context.Context, projectID uuid.UUID, limit int) ([]ProgressUpdate, error)
}

// BuyerStore reads buyer profiles
type BuyerStore interface {
	GetBuyer(ctx context.Context, id uuid.UUID) (*Buyer, error)
}

// ReportStore persists and reads back assembled reports and certificates
type ReportStore interface {
	SaveReport(ctx context.Context, report *BuyerImpactReport) error
	GetReport(ctx context.Context, id uuid.UUID) (*BuyerImpactReport, error)
	ListReports(ctx context.Context, filters *ReportFilters) ([]ReportSummary, error)
	UpdateReportStatus(ctx context.Context, id uuid.UUID, status ReportStatus) error
	ListExpiredReports(ctx context.Context, asOf time.Time, limit int) ([]uuid.UUID, error)

	SaveCertificate(ctx context.Context, cert *ImpactCertificate) error
	GetCertificate(ctx context.Context, id uuid.UUID) (*ImpactCertificate, error)
	ListCertificates(ctx context.Context, buyerID uuid.UUID) ([]*ImpactCertificate, error)
}

// Repository bundles every store the engine needs
type Repository interface {
	PurchaseStore
	ProjectStore
	ProgressStore
	BuyerStore
	ReportStore
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// =====================================================
// Ledger Reads
// =====================================================

func (r *PostgresRepository) ListCompletedPurchases(ctx context.Context, buyerID uuid.UUID, period *ReportPeriod) ([]Purchase, error) {
	query := `
		SELECT id, buyer_id, project_id, credit_amount, unit_price, total_amount, status, created_at
		FROM purchases
		WHERE buyer_id = $1 AND status = $2
	`
	args := []interface{}{buyerID, PaymentStatusCompleted}

	if period != nil {
		query += " AND created_at >= $3 AND created_at <= $4"
		args = append(args, period.Start, period.End)
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.BuyerID, &p.ProjectID, &p.CreditAmount,
			&p.UnitPrice, &p.TotalAmount, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}

	return purchases, rows.Err()
}

func (r *PostgresRepository) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	query := `
		SELECT id, name, type, status, country, region, latitude, longitude,
		       budget, start_date, end_date, target_carbon_impact
		FROM projects
		WHERE id = $1
	`

	var p Project
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Type, &p.Status,
		&p.Location.Country, &p.Location.Region, &p.Location.Latitude, &p.Location.Longitude,
		&p.Budget, &p.StartDate, &p.EndDate, &p.TargetCarbonImpact,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &p, nil
}

// ListProgressUpdates returns updates newest first; a non-positive limit
// means no limit.
func (r *PostgresRepository) ListProgressUpdates(ctx context.Context, projectID uuid.UUID, limit int) ([]ProgressUpdate, error) {
	query := `
		SELECT id, project_id, title, carbon_impact_to_date, progress_percentage, measurement, created_at
		FROM progress_updates
		WHERE project_id = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{projectID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress updates: %w", err)
	}
	defer rows.Close()

	var updates []ProgressUpdate
	for rows.Next() {
		var u ProgressUpdate
		var measurementJSON []byte
		if err := rows.Scan(&u.ID, &u.ProjectID, &u.Title, &u.CarbonImpactToDate,
			&u.ProgressPercentage, &measurementJSON, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress update: %w", err)
		}
		if len(measurementJSON) > 0 {
			var m MeasurementData
			if err := json.Unmarshal(measurementJSON, &m); err == nil {
				u.Measurement = &m
			}
		}
		updates = append(updates, u)
	}

	return updates, rows.Err()
}

func (r *PostgresRepository) GetBuyer(ctx context.Context, id uuid.UUID) (*Buyer, error) {
	query := `SELECT id, name, organization FROM buyers WHERE id = $1`

	var b Buyer
	err := r.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Name, &b.Organization)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get buyer: %w", err)
	}

	return &b, nil
}

// =====================================================
// Reports
// =====================================================

func (r *PostgresRepository) SaveReport(ctx context.Context, report *BuyerImpactReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO impact_reports (
			id, buyer_id, report_type, status, total_carbon_offset, body, generated_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		report.ID, report.BuyerID, report.ReportType, report.Status,
		report.TotalImpact.TotalCarbonOffset, body, report.GeneratedAt, report.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetReport(ctx context.Context, id uuid.UUID) (*BuyerImpactReport, error) {
	query := `SELECT body, status FROM impact_reports WHERE id = $1`

	var body []byte
	var status ReportStatus
	err := r.db.QueryRowContext(ctx, query, id).Scan(&body, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report BuyerImpactReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	// Status may have been transitioned after the body was frozen.
	report.Status = status

	return &report, nil
}

func (r *PostgresRepository) ListReports(ctx context.Context, filters *ReportFilters) ([]ReportSummary, error) {
	query := `
		SELECT id, buyer_id, report_type, status, total_carbon_offset, generated_at, expires_at
		FROM impact_reports
		WHERE buyer_id = $1
	`
	args := []interface{}{filters.BuyerID}
	argCount := 1

	if filters.ReportType != nil {
		argCount++
		query += fmt.Sprintf(" AND report_type = $%d", argCount)
		args = append(args, *filters.ReportType)
	}

	argCount++
	query += fmt.Sprintf(" ORDER BY generated_at DESC LIMIT $%d", argCount)
	limit := filters.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var summaries []ReportSummary
	for rows.Next() {
		var s ReportSummary
		if err := rows.Scan(&s.ID, &s.BuyerID, &s.ReportType, &s.Status,
			&s.TotalCarbonOffset, &s.GeneratedAt, &s.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan report summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

func (r *PostgresRepository) UpdateReportStatus(ctx context.Context, id uuid.UUID, status ReportStatus) error {
	query := `UPDATE impact_reports SET status = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) ListExpiredReports(ctx context.Context, asOf time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM impact_reports
		WHERE expires_at <= $1 AND status != $2
		ORDER BY expires_at ASC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, asOf, ReportStatusArchived, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired reports: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan report id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// =====================================================
// Certificates
// =====================================================

func (r *PostgresRepository) SaveCertificate(ctx context.Context, cert *ImpactCertificate) error {
	projectIDsJSON, err := json.Marshal(cert.ProjectIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal project ids: %w", err)
	}
	auditJSON, err := json.Marshal(cert.AuditTrail)
	if err != nil {
		return fmt.Errorf("failed to marshal audit trail: %w", err)
	}

	query := `
		INSERT INTO impact_certificates (
			id, buyer_id, type, quantification, unit, issuer, verifier,
			serial_number, issue_date, valid_until, project_ids, audit_trail
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.ExecContext(ctx, query,
		cert.ID, cert.BuyerID, cert.Type, cert.Quantification, cert.Unit,
		cert.Issuer, cert.Verifier, cert.SerialNumber, cert.IssueDate,
		cert.ValidUntil, projectIDsJSON, auditJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save certificate: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetCertificate(ctx context.Context, id uuid.UUID) (*ImpactCertificate, error) {
	query := `
		SELECT id, buyer_id, type, quantification, unit, issuer, verifier,
		       serial_number, issue_date, valid_until, project_ids, audit_trail
		FROM impact_certificates
		WHERE id = $1
	`

	cert, err := scanCertificate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	return cert, nil
}

func (r *PostgresRepository) ListCertificates(ctx context.Context, buyerID uuid.UUID) ([]*ImpactCertificate, error) {
	query := `
		SELECT id, buyer_id, type, quantification, unit, issuer, verifier,
		       serial_number, issue_date, valid_until, project_ids, audit_trail
		FROM impact_certificates
		WHERE buyer_id = $1
		ORDER BY issue_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	defer rows.Close()

	var certs []*ImpactCertificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		certs = append(certs, cert)
	}

	return certs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCertificate(row rowScanner) (*ImpactCertificate, error) {
	var cert ImpactCertificate
	var projectIDsJSON, auditJSON []byte

	err := row.Scan(
		&cert.ID, &cert.BuyerID, &cert.Type, &cert.Quantification, &cert.Unit,
		&cert.Issuer, &cert.Verifier, &cert.SerialNumber, &cert.IssueDate,
		&cert.ValidUntil, &projectIDsJSON, &auditJSON,
	)
	if err != nil {
		return nil, err
	}

	if len(projectIDsJSON) > 0 {
		json.Unmarshal(projectIDsJSON, &cert.ProjectIDs)
	}
	if len(auditJSON) > 0 {
		json.Unmarshal(auditJSON, &cert.AuditTrail)
	}

	return &cert, nil
}
