package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"carbondesk/buyer-portal/buyer-portal-backend/internal/impact"
	"carbondesk/buyer-portal/buyer-portal-backend/internal/impact/export"
)

// ImpactAPI holds the impact reporting API dependencies
type ImpactAPI struct {
	Handler    *impact.Handler
	Service    *impact.Service
	Repository impact.Repository
}

// SetupImpactAPI sets up the impact reporting API with all dependencies
func SetupImpactAPI(db *sqlx.DB, logger *zap.Logger) (*ImpactAPI, error) {
	// Create repository
	repository := impact.NewPostgresRepository(db)

	// Create service
	service := impact.NewService(repository, impact.DefaultEngineConfig(), logger)

	// Create handler
	handler := impact.NewHandler(service, logger, export.PortfolioWorkbook, export.CertificatePDF)

	return &ImpactAPI{
		Handler:    handler,
		Service:    service,
		Repository: repository,
	}, nil
}

// RegisterImpactRoutes registers the impact reporting routes on the router group
func RegisterImpactRoutes(router *gin.RouterGroup, api *ImpactAPI) {
	api.Handler.RegisterRoutes(router)
}
