// Creates a front-desk user account.
//
// Usage:
//
//	go run ./cmd/adduser -username desk -password 'long-enough' -role staff
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gym_crm_backend/internal/config"
	"gym_crm_backend/internal/database"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"
)

func main() {
	username := flag.String("username", "", "username (required)")
	password := flag.String("password", "", "plain-text password, at least 8 characters (required)")
	fullName := flag.String("name", "", "full name")
	role := flag.String("role", "staff", "admin or staff")
	flag.Parse()

	utils.InitLogger("info", true)

	if *username == "" || *password == "" {
		log.Fatal().Msg("both -username and -password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.InitDB(ctx, cfg.PostgresDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	authService := services.NewAuthService(repositories.NewAuthRepository(db), db, cfg.JWTKey(), cfg.JWT.TTL)
	user, err := authService.CreateUser(ctx, services.CreateUserRequest{
		Username: *username,
		Password: *password,
		FullName: *fullName,
		Role:     *role,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("user %q created with id %d and role %s\n", user.Username, user.ID, user.Role)
}
