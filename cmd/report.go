package cmd

import (
	"context"
	"fmt"
	"log"

	"report-service/core/config"
	"report-service/core/contentrepo"
	"report-service/core/logger"
	"report-service/core/server"
	"report-service/core/storage"
	"report-service/feature/events"
	"report-service/feature/reports"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reportRootID  string
	reportArchive bool
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a retention report",
	Long:  `Builds a retention report over the live repository content and prints it, optionally archiving it to object storage.`,
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

		rootID := reportRootID
		if rootID == "" {
			rootID = cfg.Sync.RootID
		}
		if rootID == "" || rootID == server.PlaceholderRootID {
			logg.Fatal("No root node id configured, set SYNC_ROOT_ID or pass --root")
		}

		var store storage.Client
		if reportArchive {
			store, err = storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
		}

		repo := contentrepo.NewClient(cfg.Repository, logg)
		mapper := events.NewMapper(cfg.Sync.RetentionDays)
		feature := reports.NewFeature(repo, store, cfg.Storage.Bucket, cfg.Reports, mapper, logg)

		ctx := context.Background()
		if reportArchive {
			report, key, err := feature.Service().BuildAndArchive(ctx, rootID)
			if err != nil {
				return err
			}
			printReport(report)
			fmt.Printf("\nArchived to %s\n", key)
			return nil
		}

		report, err := feature.Service().Build(ctx, rootID)
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	},
}

func printReport(report *reports.Report) {
	fmt.Printf("Retention report for %s (%d documents, generated %s)\n\n",
		report.RootID, report.Documents, report.GeneratedAt)
	fmt.Printf("%-40s %-8s %-18s %-18s %s\n", "FILE", "KIND", "CREATED", "EXPIRES", "DAYS")
	for _, row := range report.Rows {
		fmt.Printf("%-40s %-8s %-18s %-18s %d\n",
			row.FileName, row.NodeKind, row.CreatedAt, row.ExpirationDate, row.ElapsedDays)
	}
}

func init() {
	reportCmd.Flags().StringVar(&reportRootID, "root", "", "repository root node id (overrides configuration)")
	reportCmd.Flags().BoolVar(&reportArchive, "archive", false, "archive the report to object storage")
	RootCmd.AddCommand(reportCmd)
}
