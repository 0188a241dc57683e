package main

import (
	"MessAPI/internal/auth"
	"MessAPI/internal/common"
	"MessAPI/internal/env"
	"MessAPI/internal/v0/mess"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Mess database
	messDB, err := sql.Open("sqlite3", "./internal/databases/mess.db")
	if err != nil {
		log.Fatal(err)
	}
	defer messDB.Close()

	// Auth database
	authDB, err := sql.Open("sqlite3", "./internal/databases/auth.db")
	if err != nil {
		log.Fatal(err)
	}
	defer authDB.Close()

	// Enable WAL mode (better concurrent performance)
	if _, err := authDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Printf("Warning: Failed to enable WAL mode: %v", err)
	}
	if _, err := messDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Printf("Warning: Failed to enable WAL mode: %v", err)
	}

	// Initialize auth components
	authRepo := auth.NewRepository(authDB)

	// OAuth configuration
	oauthConfig := auth.NewOAuthConfig(
		auth.ProviderConfig{
			ClientID:     env.GetEnv(env.EnvGoogleClientID, ""),
			ClientSecret: env.GetEnv(env.EnvGoogleClientSecret, ""),
		},
		auth.ProviderConfig{
			ClientID:     env.GetEnv(env.EnvGitHubClientID, ""),
			ClientSecret: env.GetEnv(env.EnvGitHubClientSecret, ""),
		},
		env.GetEnv(env.EnvAuthCallbackBaseURL, "http://localhost:9238"),
	)

	// Auth stores
	stateStore := auth.NewOAuthStateStore(authRepo)
	sessionStore := auth.NewSessionStore(
		authRepo,
		env.GetDuration(env.EnvSessionDuration, 30*24*time.Hour),
		env.GetBool(env.EnvSecureCookies, false),
	)

	// Initialize mess components
	messRepo := mess.NewRepository(messDB)
	if err := mess.SeedDefaultPointTable(messRepo); err != nil {
		log.Fatal(err)
	}
	clock := mess.NewClock()
	pusher := mess.NewPusher(
		env.GetEnv(env.EnvFCMServerKey, ""),
		env.GetEnv(env.EnvFCMEndpoint, ""),
	)
	messHandler := mess.NewHandler(messRepo, authRepo, clock, pusher)

	// Auth handlers
	authHandler := auth.NewHandler(
		authRepo,
		oauthConfig,
		sessionStore,
		stateStore,
		env.GetEnv(env.EnvFrontendURL, ""),
	)
	authMiddleware := auth.NewMiddleware(authRepo, sessionStore)

	// Start background cleanup of expired sessions, OAuth states and
	// notifications
	janitor := auth.NewJanitor(
		sessionStore,
		stateStore,
		env.GetDuration(env.EnvCleanupInterval, time.Hour),
		messRepo,
	)
	janitor.Start()

	router := gin.Default()

	// Global routes
	global := router.Group("/api")
	common.RegisterRoutes(global)

	// Auth routes (public + session-protected + admin)
	auth.RegisterRoutes(global, authHandler, authMiddleware)

	// v0 API routes
	v0Group := router.Group("/api/v0")
	{
		mess.RegisterRoutes(v0Group, messHandler, authMiddleware)
	}

	// Graceful shutdown handling
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		janitor.Stop()
		os.Exit(0)
	}()

	err = router.Run(":9238")
	if err != nil {
		log.Fatal(err)
	}
}

/*
MessAPI is the backend service for the MEA hostel mess PWA: meal marking, monthly rosters, point-based billing and push notifications for resident students.
MessAPI Copyright (C) 2025 MEA Mess Committee
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
