package httpserver

import (
	"net/http"
	"time"

	"alianca-go/internal/config"
	"alianca-go/internal/metrics"
	"alianca-go/internal/transport/httpserver/handler"
	authmw "alianca-go/internal/transport/httpserver/middleware"
	"alianca-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	Metrics *metrics.Metrics
	// MediaRoot is served under /media/ when avatars are stored locally.
	MediaRoot string
}

func NewRouter(cfg config.Config, handlers *handler.Handlers, opts RouterOptions, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.InstrumentHandler)
	}
	r.Use(authmw.NewCORS(cfg.CORSOrigins))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	if opts.MediaRoot != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(opts.MediaRoot))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))
		r.Get("/health", handlers.Health)

		auth := authmw.NewSupabaseAuth(cfg.Supabase, log)
		joinLimiter := authmw.NewRateLimiter(cfg.Groups.JoinPerMinute, cfg.Groups.JoinBurst, log)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)

			r.Get("/profile", handlers.GetProfile)
			r.Post("/profile", handlers.OnboardProfile)
			r.Patch("/profile", handlers.UpdateProfile)
			r.Put("/profile/avatar", handlers.UploadProfileAvatar)

			r.Get("/groups/me", handlers.GetGroupMe)
			r.Post("/groups", handlers.CreateGroup)
			r.With(joinLimiter.Handler).Post("/groups/join", handlers.JoinGroup)
			r.Get("/groups/code/{code}", handlers.GetGroupByCode)
			r.Get("/groups/me/details", handlers.GetGroupDetails)
			r.Patch("/groups/me", handlers.UpdateGroup)
			r.Delete("/groups/me", handlers.DeleteGroup)
			r.Post("/groups/me/leave", handlers.LeaveGroup)
			r.Patch("/groups/me/members/{user_id}", handlers.UpdateGroupMember)
			r.Delete("/groups/me/members/{user_id}", handlers.RemoveGroupMember)
			r.Put("/groups/me/avatar", handlers.UploadGroupAvatar)

			r.Get("/activities", handlers.ListActivities)
			r.Post("/activities", handlers.AddActivity)
			r.Get("/activities/recent", handlers.RecentActivities)
			r.Post("/activities/{id}/toggle", handlers.ToggleActivity)
			r.Patch("/activities/{id}", handlers.UpdateActivity)
			r.Delete("/activities/{id}", handlers.DeleteActivity)

			r.Get("/transactions", handlers.ListTransactions)
			r.Post("/transactions", handlers.AddTransaction)
			r.Get("/transactions/summary", handlers.TransactionSummary)
			r.Delete("/transactions/{id}", handlers.DeleteTransaction)

			r.Get("/routines", handlers.ListRoutines)
			r.Post("/routines", handlers.CreateRoutine)
			r.Get("/routines/completions", handlers.ListCompletions)
			r.Get("/routines/streak", handlers.RoutineStreak)
			r.Patch("/routines/{id}", handlers.UpdateRoutine)
			r.Delete("/routines/{id}", handlers.DeleteRoutine)
			r.Post("/routines/{id}/toggle", handlers.ToggleRoutine)

			r.Get("/dashboard", handlers.GetDashboard)
		})
	})

	return r
}
