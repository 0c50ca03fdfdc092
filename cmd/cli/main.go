package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"ecobazaarx/internal/app"
	"ecobazaarx/internal/config"
	"ecobazaarx/internal/models"
)

const usage = "expected 'add-user' or 'seed-demo' subcommand"

func main() {
	addUserCmd := flag.NewFlagSet("add-user", flag.ExitOnError)
	name := addUserCmd.String("name", "", "Name for the new user")
	email := addUserCmd.String("email", "", "Email for the new user")
	password := addUserCmd.String("password", "", "Password for the new user")
	role := addUserCmd.String("role", string(models.RoleAdmin), "Role: consumer, seller or admin")

	seedCmd := flag.NewFlagSet("seed-demo", flag.ExitOnError)
	seedPassword := seedCmd.String("password", "", "Password for the demo accounts")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	// La CLI nunca siembra por su cuenta
	cfg.SeedDemo = false
	logger := cfg.NewLogger()

	if err := app.RequireDurableStore(cfg); err != nil {
		logger.Error("Refusing to write to an ephemeral store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-user":
		addUserCmd.Parse(os.Args[2:])
		if *name == "" || *email == "" || *password == "" {
			fmt.Println("name, email and password are required")
			addUserCmd.PrintDefaults()
			os.Exit(1)
		}
		createUser(cfg, logger, models.UserCandidate{
			Name:     *name,
			Email:    *email,
			Password: *password,
			Role:     models.Role(*role),
		})
	case "seed-demo":
		seedCmd.Parse(os.Args[2:])
		seedDemo(cfg, logger, *seedPassword)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func createUser(cfg *config.Config, logger *slog.Logger, candidate models.UserCandidate) {
	ctx := context.Background()
	state, closeState, err := app.NewState(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeState()

	user, err := state.RegisterUser(ctx, candidate)
	if err != nil {
		logger.Error("Failed to create user", "error", err)
		closeState()
		os.Exit(1)
	}
	if err := state.Flush(ctx); err != nil {
		logger.Error("Failed to save user", "error", err)
		closeState()
		os.Exit(1)
	}
	fmt.Printf("User '%s' (%s) created with id %d.\n", user.Email, user.Role, user.ID)
}

func seedDemo(cfg *config.Config, logger *slog.Logger, password string) {
	ctx := context.Background()
	state, closeState, err := app.NewState(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeState()

	seeded, err := state.SeedDemo(ctx, password)
	if err != nil {
		logger.Error("Failed to seed demo data", "error", err)
		closeState()
		os.Exit(1)
	}
	if !seeded {
		fmt.Println("Store already has users; nothing seeded.")
		return
	}
	if err := state.Flush(ctx); err != nil {
		logger.Error("Failed to save demo data", "error", err)
		closeState()
		os.Exit(1)
	}
	fmt.Println("Demo data seeded.")
}
