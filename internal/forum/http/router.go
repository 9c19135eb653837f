package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/parleyhq/parley/internal/forum/domain"
	"github.com/parleyhq/parley/internal/forum/service"
	"github.com/parleyhq/parley/internal/forum/store"
	"github.com/parleyhq/parley/pkg/httpx"
	"github.com/parleyhq/parley/pkg/slogx"

	_ "github.com/parleyhq/parley/api/forum" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

const defaultPageSize = 10

// RefreshPath is where the session gate sends stale sessions.
const RefreshPath = "/v1/users/token/refresh"

// BypassPaths are reachable without a session check: credential endpoints,
// health probes and the docs.
var BypassPaths = []string{
	"/v1/users",
	"/v1/users/login",
	"/v1/users/guest",
	RefreshPath,
	"/livez",
	"/readyz",
	"/swagger/",
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	gate  *httpx.SessionGate

	AuthService     *service.AuthService
	UserService     *service.UserService
	CategoryService *service.CategoryService
	TopicService    *service.TopicService
	ReplyService    *service.ReplyService
	MessageService  *service.MessageService
}

func NewRouter(
	gate *httpx.SessionGate,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		gate:         gate,
		logger:       logger,
	}

	// Set default middleware chain. The gate runs after logging so its
	// redirects show up in the request log.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		gate.Middleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerCategories()
	r.registerTopics()
	r.registerReplies()
	r.registerMessages()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Parley Forum API
//	@version		0.1.0
///	@description	Discussion forum backend with a stateless session core: short-lived
//	@description	access tokens paired with refresh tokens that are cryptographically
//	@description	bound to the exact access token they were issued with.
//
//	@contact.name	ParleyHQ
//	@contact.url	https://github.com/parleyhq/parley
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		Auth:          r.AuthService,
		Users:         r.UserService,
		GuestSentinel: r.gate.GuestSentinel,
	}

	// Credential endpoints carry strict limits; login keys on IP+username
	// so one address cannot walk a password list for a single account.
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/users/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)
	r.Mux.Handle("POST /v1/users/guest",
		httpx.Chain(http.HandlerFunc(h.HandleGuest),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// The gate redirects here with GET; clients may also POST directly.
	refresh := httpx.Chain(http.HandlerFunc(h.HandleRefresh),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.Mux.Handle("GET "+RefreshPath, refresh)
	r.Mux.Handle("POST "+RefreshPath, refresh)

	r.Mux.Handle("PUT /v1/users/admin",
		httpx.Chain(http.HandlerFunc(h.HandleSetAdmin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerCategories() {
	h := &CategoriesHandler{Auth: r.AuthService, Categories: r.CategoryService}

	r.Mux.Handle("GET /v1/categories",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/categories/{id}/topics",
		httpx.Chain(http.HandlerFunc(h.HandleTopics),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("POST /v1/categories",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/categories/{id}/privacy",
		httpx.Chain(http.HandlerFunc(h.HandleSetPrivacy),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/categories/{id}/lock",
		httpx.Chain(http.HandlerFunc(h.HandleLock),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/categories/{id}/access",
		httpx.Chain(http.HandlerFunc(h.HandleGrantAccess),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/categories/{id}/access/{username}",
		httpx.Chain(http.HandlerFunc(h.HandleRevokeAccess),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/categories/{id}/privileged",
		httpx.Chain(http.HandlerFunc(h.HandlePrivilegedUsers),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerTopics() {
	h := &TopicsHandler{Auth: r.AuthService, Topics: r.TopicService}

	r.Mux.Handle("GET /v1/topics",
		httpx.Chain(http.HandlerFunc(h.HandleSearch),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/topics/count/{categoryID}",
		httpx.Chain(http.HandlerFunc(h.HandleCount),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/topics/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("POST /v1/topics",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/topics/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleEdit),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/topics/{id}/lock",
		httpx.Chain(http.HandlerFunc(h.HandleLock),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerReplies() {
	h := &RepliesHandler{Auth: r.AuthService, Replies: r.ReplyService}

	r.Mux.Handle("POST /v1/replies",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/replies/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleEdit),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/replies/best",
		httpx.Chain(http.HandlerFunc(h.HandleChooseBest),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/replies/vote",
		httpx.Chain(http.HandlerFunc(h.HandleVote),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerMessages() {
	h := &MessagesHandler{Auth: r.AuthService, Messages: r.MessageService}

	r.Mux.Handle("POST /v1/messages",
		httpx.Chain(http.HandlerFunc(h.HandleSend),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/messages",
		httpx.Chain(http.HandlerFunc(h.HandleConversations),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/messages/with",
		httpx.Chain(http.HandlerFunc(h.HandleConversationsWith),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/messages/chat",
		httpx.Chain(http.HandlerFunc(h.HandleChat),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

// requireIdentity resolves the request's access token to a user, rejecting
// guests and anonymous callers.
func requireIdentity(r *http.Request, auth *service.AuthService) (domain.User, error) {
	return auth.ResolveIdentity(r.Context(), httpx.AccessTokenFromRequest(r))
}

// optionalIdentity resolves the viewer if a usable token is present, nil
// otherwise. Browsing endpoints degrade to the guest view instead of
// rejecting.
func optionalIdentity(r *http.Request, auth *service.AuthService) *domain.User {
	user, err := auth.ResolveIdentity(r.Context(), httpx.AccessTokenFromRequest(r))
	if err != nil {
		return nil
	}
	return &user
}

// pageFromQuery reads 1-based "page" and optional "limit" query parameters.
func pageFromQuery(r *http.Request) store.Page {
	limit := defaultPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}

	return store.Page{Limit: limit, Offset: (page - 1) * limit}
}

func sortFromQuery(r *http.Request) store.TopicSort {
	if r.URL.Query().Get("sort") == "desc" {
		return store.TopicSortDesc
	}
	return store.TopicSortAsc
}
