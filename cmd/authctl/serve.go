package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/jrsteele09/go-auth-client/guard"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/session"
)

// UI route paths served by the demo.
const (
	routeHome      = "/"
	routeLogin     = "/login"
	routeDashboard = "/dashboard"
	routeProfile   = "/profile"
)

// serveCmd runs a small guarded UI over the session: public home and login
// pages, protected dashboard and profile pages. It demonstrates the guard
// redirecting unauthenticated navigation to the login entry.
func serveCmd(provider *session.Provider, c config.Config) error {
	displayAppname(c.GetAppName())

	routes := guard.Routes{
		{Path: routeHome, RequiresAuth: false},
		{Path: routeLogin, RequiresAuth: false},
		{Path: routeDashboard, RequiresAuth: true},
		{Path: routeProfile, RequiresAuth: true},
	}
	viewGuard := guard.New(provider, routes, routeLogin)
	protect := viewGuard.Middleware()

	router := mux.NewRouter()
	router.HandleFunc(routeHome, homeHandler(provider)).Methods("GET")
	router.HandleFunc(routeLogin, loginPageHandler()).Methods("GET")
	router.HandleFunc(routeDashboard, protect(dashboardHandler(provider))).Methods("GET")
	router.HandleFunc(routeProfile, protect(profileHandler(provider))).Methods("GET")

	server := &http.Server{Addr: c.GetUIPort(), Handler: router}
	go listenAndServe(server)
	waitForStopSignal()
	return shutdown(server)
}

func homeHandler(provider *session.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if provider.State().Authenticated() {
			fmt.Fprintln(w, "Welcome back. Visit /dashboard.")
			return
		}
		fmt.Fprintln(w, "Welcome. Visit /login.")
	}
}

func loginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Log in with: authctl login -email <email> -password <password>")
	}
}

func dashboardHandler(provider *session.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := provider.State().Identity
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"subject":  identity.Subject,
			"email":    identity.Email,
			"verified": identity.Verified,
			"expires":  identity.ExpiresAt,
		})
	}
}

func profileHandler(provider *session.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := provider.GetProfile(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(profile)
	}
}

func listenAndServe(server *http.Server) error {
	log.Printf("UI listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
