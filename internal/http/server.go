package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	applog "carledger/internal/log"
	"carledger/internal/middleware/ratelimit"
	"carledger/internal/middleware/security"
	"carledger/internal/middleware/trace"
	"carledger/internal/report"
	"carledger/internal/services"
)

// Deps are the collaborators the API surfaces.
type Deps struct {
	Vehicles *services.VehicleService
	Expenses *services.ExpenseService
	Profile  *services.ProfileService
	Reports  *report.Service
	Logger   *applog.Logger
}

type Options struct {
	RateLimitPerMinute int
}

// Server wires the JSON API: routes, tracing, security headers and
// per-IP rate limiting around the service layer.
type Server struct {
	http.Server

	vehicles *services.VehicleService
	expenses *services.ExpenseService
	profile  *services.ProfileService
	reports  *report.Service
	logger   *applog.Logger

	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

func NewServer(addr string, deps Deps, opts Options) *Server {
	s := &Server{
		vehicles: deps.Vehicles,
		expenses: deps.Expenses,
		profile:  deps.Profile,
		reports:  deps.Reports,
		logger:   deps.Logger.WithComponent(applog.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/vehicles", s.handleCreateVehicle)
	mux.HandleFunc("GET /api/vehicles", s.handleListVehicles)
	mux.HandleFunc("GET /api/vehicles/{id}", s.handleGetVehicle)
	mux.HandleFunc("PUT /api/vehicles/{id}", s.handleUpdateVehicle)
	mux.HandleFunc("DELETE /api/vehicles/{id}", s.handleDeleteVehicle)
	mux.HandleFunc("POST /api/vehicles/{id}/sold", s.handleMarkVehicleSold)
	mux.HandleFunc("POST /api/vehicles/{id}/expenses", s.handleCreateExpense)

	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/reports/annual", s.handleAnnualReport)
	mux.HandleFunc("GET /api/reports/monthly", s.handleMonthlyReport)

	mux.HandleFunc("GET /api/settings/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /api/settings/profile", s.handleUpdateProfile)

	mux.HandleFunc("GET /api/verify/{id}", s.handleVerify)

	traceMW := trace.NewMiddleware(extractClientIP)
	headersMW := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limitMW := s.limiter.Middleware(extractClientIP, s.onRateLimited)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           traceMW.Middleware(headersMW.Middleware(limitMW(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// Shutdown stops background goroutines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, extractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	respondError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

// extractClientIP resolves the client address, trusting proxy headers
// when present.
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// First hop is the original client.
		if idx := strings.IndexByte(ip, ','); idx > 0 {
			return strings.TrimSpace(ip[:idx])
		}
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
