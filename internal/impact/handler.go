package impact

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbondesk/buyer-portal/buyer-portal-backend/internal/auth"
)

// ReportExporter renders a report as a downloadable spreadsheet
type ReportExporter func(*BuyerImpactReport) ([]byte, error)

// CertificateExporter renders a certificate as a downloadable PDF
type CertificateExporter func(*ImpactCertificate) ([]byte, error)

// Handler handles HTTP requests for impact reporting operations
type Handler struct {
	service    *Service
	logger     *zap.Logger
	exportXLSX ReportExporter
	exportPDF  CertificateExporter
}

// NewHandler creates a new impact handler
func NewHandler(service *Service, logger *zap.Logger, exportXLSX ReportExporter, exportPDF CertificateExporter) *Handler {
	return &Handler{
		service:    service,
		logger:     logger,
		exportXLSX: exportXLSX,
		exportPDF:  exportPDF,
	}
}

// RegisterRoutes registers impact reporting routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	impact := router.Group("/impact")
	{
		impact.POST("/reports", h.generateReport)
		impact.GET("/reports", h.listReports)
		impact.GET("/reports/:id", h.getReport)
		impact.POST("/reports/:id/status", h.transitionReport)
		impact.GET("/reports/:id/export", h.exportReport)

		impact.POST("/certificates", h.issueCertificate)
		impact.GET("/certificates", h.listCertificates)
		impact.GET("/certificates/:id/pdf", h.certificatePDF)
	}
}

// =====================================================
// Report Endpoints
// =====================================================

// generateReport handles POST /api/v1/impact/reports
func (h *Handler) generateReport(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, _ := auth.IdentityFromContext(c)
	report, err := h.service.GenerateReport(c.Request.Context(), identity, &req)
	if err != nil {
		h.respondError(c, err, "Failed to generate report")
		return
	}

	c.JSON(http.StatusCreated, report)
}

// listReports handles GET /api/v1/impact/reports
func (h *Handler) listReports(c *gin.Context) {
	buyerID, err := uuid.Parse(c.Query("buyer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid buyer ID"})
		return
	}

	filters := &ReportFilters{
		BuyerID: buyerID,
		Limit:   h.getIntParam(c, "limit", 20),
	}
	if reportType := c.Query("report_type"); reportType != "" {
		rt := ReportType(reportType)
		filters.ReportType = &rt
	}

	identity, _ := auth.IdentityFromContext(c)
	summaries, err := h.service.ListReports(c.Request.Context(), identity, filters)
	if err != nil {
		h.respondError(c, err, "Failed to list reports")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": summaries,
		"count":   len(summaries),
	})
}

// getReport handles GET /api/v1/impact/reports/:id
func (h *Handler) getReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report ID"})
		return
	}

	identity, _ := auth.IdentityFromContext(c)
	report, err := h.service.GetReport(c.Request.Context(), identity, id)
	if err != nil {
		h.respondError(c, err, "Failed to get report")
		return
	}

	c.JSON(http.StatusOK, report)
}

// transitionReport handles POST /api/v1/impact/reports/:id/status
func (h *Handler) transitionReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report ID"})
		return
	}

	var req TransitionReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, _ := auth.IdentityFromContext(c)
	report, err := h.service.TransitionReport(c.Request.Context(), identity, id, req.Status)
	if err != nil {
		h.respondError(c, err, "Failed to transition report")
		return
	}

	c.JSON(http.StatusOK, report)
}

// exportReport handles GET /api/v1/impact/reports/:id/export
func (h *Handler) exportReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report ID"})
		return
	}

	identity, _ := auth.IdentityFromContext(c)
	report, err := h.service.GetReport(c.Request.Context(), identity, id)
	if err != nil {
		h.respondError(c, err, "Failed to get report for export")
		return
	}

	data, err := h.exportXLSX(report)
	if err != nil {
		h.logger.Error("Failed to export report",
			zap.String("report_id", id.String()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	filename := fmt.Sprintf("impact-report-%s.xlsx", id.String())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// =====================================================
// Certificate Endpoints
// =====================================================

// issueCertificate handles POST /api/v1/impact/certificates
func (h *Handler) issueCertificate(c *gin.Context) {
	var req IssueCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, _ := auth.IdentityFromContext(c)
	cert, err := h.service.IssueCertificate(c.Request.Context(), identity, &req)
	if err != nil {
		h.respondError(c, err, "Failed to issue certificate")
		return
	}

	if cert == nil {
		c.JSON(http.StatusOK, gin.H{"certificates": []ImpactCertificate{}})
		return
	}

	c.JSON(http.StatusCreated, cert)
}

// listCertificates handles GET /api/v1/impact/certificates
func (h *Handler) listCertificates(c *gin.Context) {
	buyerID, err := uuid.Parse(c.Query("buyer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid buyer ID"})
		return
	}

	identity, _ := auth.IdentityFromContext(c)
	certs, err := h.service.ListCertificates(c.Request.Context(), identity, buyerID)
	if err != nil {
		h.respondError(c, err, "Failed to list certificates")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"certificates": certs,
		"count":        len(certs),
	})
}

// certificatePDF handles GET /api/v1/impact/certificates/:id/pdf
func (h *Handler) certificatePDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid certificate ID"})
		return
	}

	identity, _ := auth.IdentityFromContext(c)
	cert, err := h.service.GetCertificate(c.Request.Context(), identity, id)
	if err != nil {
		h.respondError(c, err, "Failed to get certificate")
		return
	}

	data, err := h.exportPDF(cert)
	if err != nil {
		h.logger.Error("Failed to render certificate PDF",
			zap.String("certificate_id", id.String()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	filename := fmt.Sprintf("certificate-%s.pdf", cert.SerialNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// =====================================================
// Helpers
// =====================================================

// respondError maps service errors to HTTP responses
func (h *Handler) respondError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// getIntParam extracts an integer query parameter with a default
func (h *Handler) getIntParam(c *gin.Context, name string, defaultValue int) int {
	if value := c.Query(name); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
