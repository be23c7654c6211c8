package routes

import (
	"net/http"

	"community/internal/handlers"
	"community/internal/metrics"
	"community/internal/middleware"

	"github.com/gorilla/mux"
)

func InitRoutes(
	router *mux.Router,
	authHandler *handlers.AuthHandler,
	articleH *handlers.ArticleHandler,
	auth middleware.Authenticator,
	limiter *middleware.RateLimiter,
) {
	router.Use(middleware.Recoverer, middleware.RequestID, middleware.Logging, metrics.InstrumentHandler)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// --- Публичные маршруты ---
	public := router.PathPrefix("").Subrouter()
	public.Use(limiter.Handler)
	public.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	public.HandleFunc("/signin", authHandler.Signin).Methods(http.MethodPost)

	// --- Защищённые JWT ---
	protected := router.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuth(auth))

	protected.HandleFunc("/profile", authHandler.Profile).Methods(http.MethodGet)
	protected.HandleFunc("/points", authHandler.Points).Methods(http.MethodGet)

	protected.HandleFunc("/article", articleH.Write).Methods(http.MethodPost)
	protected.HandleFunc("/article", articleH.Update).Methods(http.MethodPut)
	protected.HandleFunc("/article/{id}", articleH.GetComments).Methods(http.MethodGet)
	protected.HandleFunc("/article/{id}", articleH.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/comments", articleH.WriteComment).Methods(http.MethodPost)
	protected.HandleFunc("/comments/{id}", articleH.DeleteComment).Methods(http.MethodDelete)
}
