// handlers/compliance_routes.go
package handlers

import (
	"rwa-invest-backend/middleware"
	"rwa-invest-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupComplianceRoutes(app *fiber.App, complianceService *services.ComplianceService) {
	// 🔐 Admin-only: classification and KYC changes are audited mutations.
	admin := app.Group("/api/admin", middleware.UserContextMiddleware(), middleware.AdminOnlyMiddleware())

	admin.Put("/users/:id/investor-type", complianceService.SetInvestorTypeHandler)
	admin.Put("/users/:id/kyc", complianceService.SetKycStatusHandler)
	admin.Get("/users/:id/audit", complianceService.GetAuditTrailHandler)
}
