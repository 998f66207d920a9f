package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/acrelay/internal/relay/service"
	"github.com/aussiebroadwan/acrelay/internal/relay/store"
	"github.com/aussiebroadwan/acrelay/pkg/httpx"
	"github.com/aussiebroadwan/acrelay/pkg/slogx"

	_ "github.com/aussiebroadwan/acrelay/api/relay" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TokenService    *service.TokenService
	ConvertService  *service.ConvertService
	CallbackService *service.CallbackService
	Delivery        *service.DeliveryManager

	// PublicBaseURL is the externally reachable origin used to build the
	// callback URL. Empty derives it from each request.
	PublicBaseURL string

	// StaticDir, when set, is served at /.
	StaticDir string

	// KeepAlive is the comment interval on event streams.
	KeepAlive time.Duration
}

func NewRouter(
	buildVersion string,
	st store.Store,
	allowedOrigins []string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORSMiddleware(allowedOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerToken()
	r.registerConvert()
	r.registerDelivery()
	r.registerCallback()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())

	if r.StaticDir != "" {
		r.Mux.Handle("GET /", http.FileServer(http.Dir(r.StaticDir)))
	}
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Acceptance Criteria Relay API
//	@version		0.1.0
//	@description	Relays acceptance-criteria conversion jobs to an n8n workflow and delivers the asynchronous
//	@description	result back to the submitting client over server-sent events or polling.
//	@description
//	@description				Client tokens are HS256 JWTs obtained from /api/token with the shared client secret.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/acrelay
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:3000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Client token. Format: "Bearer {token}". X-Client-Token is also accepted.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// clientToken reads the bearer header first, then X-Client-Token.
var clientToken = httpx.FirstToken(httpx.BearerToken, httpx.HeaderToken("X-Client-Token"))

func (r *Router) registerToken() {
	// Secret exchange is the brute-force surface.
	h := httpx.Chain(&TokenHandler{TokenService: r.TokenService},
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.Mux.Handle("POST /api/token", h)
	r.Mux.Handle("POST /api/get-token", h)
}

func (r *Router) registerConvert() {
	h := &ConvertHandler{
		ConvertService: r.ConvertService,
		PublicBaseURL:  r.PublicBaseURL,
	}
	r.Mux.Handle("POST /api/convert",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.TokenService, clientToken),
			httpx.RateLimitByToken(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerDelivery() {
	result := httpx.Chain(&ResultHandler{Delivery: r.Delivery},
		httpx.AuthnMiddleware(r.TokenService, clientToken),
		httpx.RateLimitByToken(httpx.LenientLimit),
	)
	r.Mux.Handle("GET /api/result", result)
	r.Mux.Handle("GET /api/gemini-output", result)

	// Verified in the handler: EventSource cannot read JSON error bodies.
	events := httpx.Chain(&EventsHandler{
		TokenService: r.TokenService,
		Delivery:     r.Delivery,
		KeepAlive:    r.KeepAlive,
	},
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	r.Mux.Handle("GET /api/events", events)
	r.Mux.Handle("GET /api/gemini-events", events)
}

func (r *Router) registerCallback() {
	h := httpx.Chain(&CallbackHandler{CallbackService: r.CallbackService},
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	r.Mux.Handle("POST /api/callback", h)
	r.Mux.Handle("POST /api/gemini-callback", h)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.TokenService, r.ConvertService),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
