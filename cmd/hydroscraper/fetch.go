package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the current usage snapshot from the portal",
	Long: `Logs in to the BC Hydro portal, scrapes the consumption table, and stores
the daily readings in the local SQLite database. Dates already stored are skipped.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Fetch started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client, err := newClient(cfg)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	defer client.Close()

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Println("Fetching current snapshot...")
	if err := client.Refresh(ctx); err != nil {
		return fmt.Errorf("refreshing data: %w", err)
	}

	usage, _ := client.Snapshot()
	stored, skipped := 0, 0
	for _, reading := range usage.Electricity {
		exists, err := db.HasDate(reading.Interval.Start)
		if err != nil {
			return fmt.Errorf("checking for existing reading: %w", err)
		}
		if exists {
			skipped++
			continue
		}
		if err := db.InsertDaily(reading); err != nil {
			return fmt.Errorf("storing reading: %w", err)
		}
		stored++
	}

	latest, _ := usage.Latest()
	fmt.Printf("✓ Stored %d new readings (%d already present) covering %s to %s\n",
		stored, skipped,
		usage.Interval.Start.Format("2006-01-02"),
		usage.Interval.End.Format("2006-01-02"))
	fmt.Printf("  Latest: %.2f kWh, $%.2f on %s\n",
		latest.Consumption, latest.Cost, latest.Interval.Start.Format("2006-01-02"))
	return nil
}
