package cmd

import (
	"context"
	"log"

	"report-service/core/config"
	"report-service/core/contentrepo"
	"report-service/core/database"
	"report-service/core/logger"
	"report-service/core/server"
	"report-service/feature/events"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncRootID string

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization pass",
	Long:  `Fetches the current repository content and appends any missing audit events, then exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		rootID := syncRootID
		if rootID == "" {
			rootID = cfg.Sync.RootID
		}
		if rootID == "" || rootID == server.PlaceholderRootID {
			logg.Fatal("No root node id configured, set SYNC_ROOT_ID or pass --root")
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := events.Migrate(db); err != nil {
			logg.Fatal("Failed to migrate audit log schema", zap.Error(err))
		}

		repo := contentrepo.NewClient(cfg.Repository, logg)
		feature := events.NewFeature(repo, db, cfg.Sync, logg)

		count, err := feature.Reconciler().Run(context.Background(), rootID)
		if err != nil {
			return err
		}
		logg.Info("Synchronization finished", zap.Int("new_events", count))
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncRootID, "root", "", "repository root node id (overrides configuration)")
	RootCmd.AddCommand(syncCmd)
}
