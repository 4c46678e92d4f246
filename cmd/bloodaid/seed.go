package main

import (
	"context"
	"fmt"

	"bloodaid/internal/db"
	"bloodaid/internal/seed"
	"bloodaid/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with initial data",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		userRepo := store.NewUserRepository(pool)
		requestRepo := store.NewDonationRequestRepository(pool)

		logrus.Info("Seeding users...")
		if err := seed.SeedUsers(ctx, userRepo); err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}

		logrus.Info("Seeding donation requests...")
		if err := seed.SeedRequests(ctx, requestRepo, userRepo); err != nil {
			return fmt.Errorf("failed to seed donation requests: %w", err)
		}

		logrus.Info("Seed complete")

		return nil
	},
}
