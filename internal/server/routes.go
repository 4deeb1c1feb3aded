package server

import (
	"net/http"

	"github.com/Lutefd/coin-relay/internal/handler"
	api_middleware "github.com/Lutefd/coin-relay/internal/middleware"
	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func (s *Server) registerRoutes() {
	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	authMiddleware := api_middleware.NewAuthMiddleware(s.deps.userRepo)
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:       []string{"Content-Type", "Authorization"},
		OptionsPassthrough:   true,
		OptionsSuccessStatus: http.StatusNoContent,
	})

	relayHandler := handler.NewRelayHandler(s.deps.relay)
	marketHandler := handler.NewMarketHandler(s.deps.marketService)
	adminHandler := handler.NewAdminHandler(s.deps.adminService)
	userHandler := handler.NewUserHandler(s.deps.userService)

	router.Get("/healthz", handler.HandlerReadiness)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/auth", func(r chi.Router) {
		r.With(s.limiter.Middleware).Post("/login", userHandler.Login)
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(corsMiddleware.Handler)
		r.Use(handler.AnswerPreflight)
		r.Use(s.limiter.Middleware)

		r.Get("/coingecko", relayHandler.Relay)

		r.Get("/global", marketHandler.Global)
		r.Get("/markets", marketHandler.Markets)
		r.Get("/overview", marketHandler.Overview)
		r.Get("/coins/{id}", marketHandler.Coin)
		r.Get("/coins/{id}/chart", marketHandler.Chart)
		r.Get("/coins/{id}/history", marketHandler.History)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Use(api_middleware.RequireRole(model.RoleAdmin))

		r.Post("/queue/clear", adminHandler.ClearQueue)
		r.Delete("/cache", adminHandler.PurgeCache)
		r.Get("/stats", adminHandler.Stats)
	})

	s.router = router
}
