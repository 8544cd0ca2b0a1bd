package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/auth"
	chatsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/chat"
	discoverysvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/discovery"
	matchessvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/matches"
	mediasvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/media"
	moderationsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/moderation"
	notifsvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/notifications"
	swipesvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/swipes"
	userssvc "github.com/SauravMrzan/dating-app-web-backend/internal/services/users"
	"github.com/SauravMrzan/dating-app-web-backend/internal/transport/http/handlers"
	"github.com/SauravMrzan/dating-app-web-backend/internal/transport/ws"
)

type Dependencies struct {
	AuthService         *authsvc.Service
	ChatService         *chatsvc.Service
	DiscoveryService    *discoverysvc.Service
	MatchService        *matchessvc.Service
	MediaService        *mediasvc.Service
	ModerationService   *moderationsvc.Service
	NotificationService *notifsvc.Service
	SwipeService        *swipesvc.Service
	UserService         *userssvc.Service
	Hub                 *ws.Hub
	Logger              *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	discoveryHandler := handlers.NewDiscoveryHandler(deps.DiscoveryService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	chatHandler := handlers.NewChatHandler(deps.ChatService)
	notificationsHandler := handlers.NewNotificationsHandler(deps.NotificationService)
	reportsHandler := handlers.NewReportsHandler(deps.ModerationService)
	meHandler := handlers.NewMeHandler(deps.UserService, deps.MediaService)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	adminMW := RequireRole("admin")

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/me", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", meHandler.Get)
		r.Put("/preferences", meHandler.UpdatePreferences)
		r.Post("/photos", meHandler.UploadPhoto)
		r.Get("/photos", meHandler.ListPhotos)
		r.Delete("/photos", meHandler.DeletePhoto)
	})

	r.With(authMW).Get("/discovery", discoveryHandler.List)
	r.With(authMW).Post("/swipe", swipeHandler.Handle)
	r.With(authMW).Get("/matches", matchesHandler.List)

	r.Route("/chat", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/send", chatHandler.Send)
		r.Get("/{matchID}", chatHandler.History)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", notificationsHandler.List)
		r.Post("/{notificationID}/read", notificationsHandler.MarkRead)
	})

	r.With(authMW).Post("/reports", reportsHandler.Create)

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMW, adminMW)
		r.Get("/reports", reportsHandler.ListAll)
		r.Post("/reports/{reportID}/resolve", reportsHandler.Resolve)
		r.Post("/reports/{reportID}/dismiss", reportsHandler.Dismiss)
	})

	if deps.Hub != nil {
		r.Method(http.MethodGet, "/ws", ws.ServeWS(deps.Hub, deps.AuthService, deps.ChatService, deps.Logger))
	}
}
