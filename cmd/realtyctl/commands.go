// cmd/realtyctl/commands.go
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/casaprime/realty-backend/internal/config"
	"github.com/casaprime/realty-backend/internal/database"
	"github.com/casaprime/realty-backend/internal/logging"
	"github.com/casaprime/realty-backend/internal/models"
	"github.com/casaprime/realty-backend/internal/services"
	"github.com/casaprime/realty-backend/internal/store"
	"github.com/casaprime/realty-backend/internal/utils"
)

// withDB loads configuration, opens the database and hands it to fn.
func withDB(fn func(cfg *config.Config, db *gorm.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(cfg.Log, cfg.Environment)

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return fn(cfg, db)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, db *gorm.DB) error {
				if err := database.RunMigrations(db); err != nil {
					return err
				}
				fmt.Println("Schema is up to date.")
				return nil
			})
		},
	}
}

func seedAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the first administrator if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			phone, _ := cmd.Flags().GetString("phone")
			password, _ := cmd.Flags().GetString("password")

			generated := password == ""
			if generated {
				var err error
				if password, err = utils.GenerateTemporaryPassword(); err != nil {
					return err
				}
			}

			return withDB(func(cfg *config.Config, db *gorm.DB) error {
				if err := database.RunMigrations(db); err != nil {
					return err
				}
				if err := database.SeedAdmin(db, name, email, utils.NormalizePhone(phone), password); err != nil {
					return err
				}
				if generated {
					fmt.Printf("Admin password: %s\n", password)
				}
				return nil
			})
		},
	}

	cmd.Flags().String("name", "Administrator", "admin display name")
	cmd.Flags().String("email", "admin@example.com", "admin email")
	cmd.Flags().String("phone", "11900000000", "admin phone")
	cmd.Flags().String("password", "", "admin password (generated when empty)")
	return cmd
}

func rebuildStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-stats",
		Short: "Recompute every realtor's status counters from the properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, db *gorm.DB) error {
				stats := services.NewStatsService(store.NewGormStore(db), cfg.StatsLocation())
				written, err := stats.RebuildCounters(context.Background())
				if err != nil {
					return err
				}
				fmt.Printf("Rebuilt counters for %d realtors.\n", written)
				return nil
			})
		},
	}
}

func rankingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Print the realtor ranking by properties sold",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			return withDB(func(cfg *config.Config, db *gorm.DB) error {
				ranking, err := services.NewRankingService(store.NewGormStore(db)).Ranking(context.Background(), limit)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "#\tREALTOR\tSOLD\tNEGOTIATING\tAVAILABLE\tTOTAL")
				for _, entry := range ranking {
					fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\n",
						entry.Position, entry.Name,
						entry.Stats.Sold, entry.Stats.Negotiating, entry.Stats.Available, entry.Stats.Total)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().Int("limit", 0, "show only the top entries (0 for all)")
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token for a staff user (development only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, _ := cmd.Flags().GetInt("ttl-hours")

			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}

			return withDB(func(cfg *config.Config, db *gorm.DB) error {
				if cfg.Environment == "production" {
					return fmt.Errorf("token issuance is disabled in production")
				}

				var user models.User
				if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
					return fmt.Errorf("failed to load user: %w", err)
				}

				utils.SetJWTSecret(cfg.JWT.SecretKey)
				token, err := utils.GenerateJWT(user.ID, user.Name, string(user.Type), ttl)
				if err != nil {
					return err
				}
				fmt.Println(token)
				return nil
			})
		},
	}

	cmd.Flags().Int("ttl-hours", 24, "token lifetime in hours")
	return cmd
}
