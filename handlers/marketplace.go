// handlers/marketplace_routes.go
package handlers

import (
	"rwa-invest-backend/middleware"
	"rwa-invest-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMarketplaceRoutes(app *fiber.App, issuerService *services.IssuerService, dealService *services.DealService, documentService *services.DocumentService) {
	api := app.Group("/api", middleware.UserContextMiddleware())

	// 🔓 Read paths — any gateway-authenticated caller.
	api.Get("/issuers", issuerService.GetAllIssuers)
	api.Get("/issuers/:id", issuerService.GetIssuerByID)
	api.Get("/deals", dealService.GetAllDeals)
	api.Get("/deals/slug/:slug", dealService.GetDealBySlug)
	api.Get("/deals/:id", dealService.GetDealByID)
	api.Get("/:ownerType/:id/documents", documentService.ListDocuments)

	// 🔐 Mutations — admin role required.
	admin := api.Group("/", middleware.AdminOnlyMiddleware())

	admin.Post("/issuers", issuerService.CreateIssuer)
	admin.Put("/issuers/:id", issuerService.UpdateIssuer)
	admin.Post("/issuers/:id/verify", issuerService.VerifyIssuer)
	admin.Delete("/issuers/:id", issuerService.DeleteIssuer)

	admin.Post("/deals", dealService.CreateDeal)
	admin.Put("/deals/:id", dealService.UpdateDeal)
	admin.Patch("/deals/:id/status", dealService.UpdateDealStatus)
	admin.Delete("/deals/:id", dealService.DeleteDeal)

	admin.Post("/:ownerType/:id/documents", documentService.UploadDocument)
	admin.Delete("/documents/:id", documentService.DeleteDocument)
}
