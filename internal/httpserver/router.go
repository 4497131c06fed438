package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"chatme/internal/comms"
	"chatme/internal/config"
	"chatme/internal/security"
	"chatme/internal/service"
	"chatme/internal/store/mongodb"
	"chatme/internal/ws"
)

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(
	cfg *config.Config,
	db *mongo.Database,
	rdb *redis.Client,
	hub *ws.Hub,
	tokenSvc *security.TokenService,
	passwordHasher *security.PasswordHasher,
	provider comms.Provider,
) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if rdb != nil {
		r.Use(RateLimitMiddleware(rdb))
	}

	// Repositories
	userRepo := mongodb.NewUserRepo(db)
	requestRepo := mongodb.NewFriendRequestRepo(db)
	groupRepo := mongodb.NewGroupRepo(db)

	// Services
	authSvc := service.NewAuthService(userRepo, tokenSvc, passwordHasher, provider)
	friendSvc := service.NewFriendService(userRepo, requestRepo, hub)
	groupSvc := service.NewGroupService(groupRepo, userRepo, provider)
	callSvc := service.NewCallService(hub, userRepo, provider, cfg.CallInviteTTL)
	groupCallSvc := service.NewGroupCallService(groupRepo, userRepo, hub)

	cookieTTL := tokenSvc.ExpiresIn()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth routes (no auth required)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", handleSignup(authSvc, cookieTTL))
			r.Post("/login", handleLogin(authSvc, cookieTTL))
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokenSvc, userRepo))

			r.Post("/auth/logout", handleLogout(authSvc))
			r.Get("/auth/me", handleMe())
			r.Post("/auth/onboarding", handleOnboarding(authSvc))

			r.Get("/chat/token", handleChatToken(authSvc))

			// Friends
			r.Route("/users", func(r chi.Router) {
				r.Get("/friends", handleListFriends(friendSvc))
				r.Get("/recommended", handleRecommendedFriends(friendSvc))
				r.Get("/friends-requests", handleIncomingFriendRequests(friendSvc))
				r.Get("/outgoing-friends-requests", handleOutgoingFriendRequests(friendSvc))
				r.Post("/friends-request/{id}", handleSendFriendRequest(friendSvc))
				r.Put("/friends-request/{id}/accept", handleAcceptFriendRequest(friendSvc))
				r.Put("/friends-request/{id}/reject", handleRejectFriendRequest(friendSvc))
				r.Delete("/friends-request/{id}", handleCancelFriendRequest(friendSvc))
			})

			// One-to-one and ad-hoc calls
			r.Route("/call", func(r chi.Router) {
				r.Post("/initiate", handleInitiateCall(callSvc))
				r.Post("/respond", handleRespondCall(callSvc))
				r.Get("/user/active", handleMyCalls(callSvc))
				r.Get("/{callID}", handleGetCall(callSvc))
				r.Post("/{callID}/end", handleEndCall(callSvc))
			})

			// Groups
			r.Route("/group", func(r chi.Router) {
				r.Post("/create", handleCreateGroup(groupSvc))
				r.Get("/", handleListGroups(groupSvc))
				r.Get("/{id}", handleGetGroup(groupSvc))
				r.Post("/{id}/add-member", handleAddGroupMember(groupSvc))
				r.Post("/{id}/remove-member", handleRemoveGroupMember(groupSvc))
				r.Delete("/{id}/leave", handleLeaveGroup(groupSvc))
			})

			// Group calls
			r.Route("/groupCall", func(r chi.Router) {
				r.Post("/start", handleStartGroupCall(groupCallSvc))
				r.Post("/join", handleJoinGroupCall(groupCallSvc))
				r.Post("/end", handleEndGroupCall(groupCallSvc))
			})
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(hub, tokenSvc, userRepo, cfg.CORSOrigins))

	return r
}
