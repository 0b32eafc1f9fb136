package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quollify/gatekey/internal/auth/domain"
	"github.com/quollify/gatekey/internal/auth/service"
	"github.com/quollify/gatekey/internal/auth/store"
	"github.com/quollify/gatekey/pkg/httpx"
	"github.com/quollify/gatekey/pkg/jwtx"
	"github.com/quollify/gatekey/pkg/slogx"

	_ "github.com/quollify/gatekey/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	revocations  httpx.RevocationChecker
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	AuthService     *service.AuthService
	TokenService    *service.TokenService
	LogoutService   *service.LogoutService
	RecoveryService *service.RecoveryService
	RoleService     *service.RoleService
}

func NewRouter(
	verifier jwtx.Verifier,
	revocations httpx.RevocationChecker,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		revocations:  revocations,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerRecovery()
	r.registerRoles()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			GateKey Authentication Service API
//	@version		0.1.0
//	@description	Token lifecycle and session security service: JWT access tokens,
//	@description	single-use refresh token rotation with theft detection, a revocation
//	@description	blacklist, and one-time password recovery tokens.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:  r.AuthService,
		TokenService: r.TokenService,
	}
	r.Mux.Handle("POST /v1/auth/register", http.HandlerFunc(h.HandleRegister))
	r.Mux.Handle("POST /v1/auth/login", http.HandlerFunc(h.HandleLogin))
	r.Mux.Handle("POST /v1/auth/refresh", http.HandlerFunc(h.HandleRefresh))
	r.Mux.Handle("GET /v1/auth/validate", http.HandlerFunc(h.HandleValidate))

	logoutHandler := &LogoutHandler{LogoutService: r.LogoutService}
	r.Mux.Handle("POST /v1/auth/logout", logoutHandler)
}

func (r *Router) registerRecovery() {
	h := &RecoveryHandler{RecoveryService: r.RecoveryService}
	r.Mux.Handle("POST /v1/auth/recover", http.HandlerFunc(h.HandleRequest))
	r.Mux.Handle("POST /v1/auth/reset-password", http.HandlerFunc(h.HandleReset))
}

func (r *Router) registerRoles() {
	h := &RoleHandler{RoleService: r.RoleService}

	// Only admins may flip roles, and the bearer token must survive the
	// blacklist check.
	secured := httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier, r.revocations),
		httpx.RequireRole(string(domain.RoleAdmin)),
	)
	r.Mux.Handle("POST /v1/users/role", secured)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
