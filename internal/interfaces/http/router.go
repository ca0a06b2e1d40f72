package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Prebatch-api/internal/application/auth"
	"github.com/jhoicas/Prebatch-api/internal/application/prebatch"
	"github.com/jhoicas/Prebatch-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	Sessions    *prebatch.SessionManager
	Ledger      *prebatch.LotLedger
	Scales      *prebatch.ScaleRouter
	Plans       *prebatch.PlanUseCase
	Metrics     nethttp.Handler // nil = sin /metrics
	MetricsPath string
	JWTSecret   string
	Logger      zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Logger)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Post("/auth/register", RequireRole(entity.RoleAdmin), authHandler.Register)

	scaleHandler := NewScaleHandler(deps.Scales, deps.Logger)
	scales := protected.Group("/scales")
	scales.Get("/", scaleHandler.List)
	scales.Get("/stream", scaleHandler.Stream)
	scales.Post("/:id/readings", scaleHandler.PostReading)
	scales.Get("/:id/tolerance", scaleHandler.Tolerance)

	h := NewPrebatchHandler(deps.Sessions, deps.Ledger, deps.Plans, deps.Logger)
	pb := protected.Group("/prebatch")
	pb.Get("/lots/:re_code", h.Lots)
	pb.Put("/lots/:intake_lot_id/status", h.SetLotStatus)
	pb.Get("/plan", h.Plan)
	pb.Get("/plans/:plan_id/batches", h.Batches)
	pb.Get("/plans/:plan_id/ingredients", h.Ingredients)
	pb.Delete("/records/:id", h.Cancel)

	session := pb.Group("/session")
	session.Get("/", h.Session)
	session.Delete("/", h.CloseSession)
	session.Get("/lots", h.SessionLots)
	session.Post("/batch", h.SelectBatch)
	session.Post("/ingredient", h.SelectIngredient)
	session.Post("/lot", h.ScanLot)
	session.Post("/origins", h.AddOrigin)
	session.Delete("/origins/:index", h.RemoveOrigin)
	session.Post("/done", h.Done)
	session.Post("/package-size/unlock", h.UnlockPackageSize)
	session.Post("/package-size/lock", h.LockPackageSize)
	session.Put("/package-size", h.SetPackageSize)
}
