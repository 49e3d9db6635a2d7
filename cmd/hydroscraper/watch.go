package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/hydroscraper/internal/database"
	"github.com/jgoulah/hydroscraper/internal/hydro"
	"github.com/jgoulah/hydroscraper/internal/publisher"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the portal on an interval and publish the latest readings",
	Long: `Runs the refresh loop: logs in, scrapes the consumption table, stores new
readings, and publishes the latest usage, cost, and billing period end to MQTT.
A failed cycle is reported and retried on the next tick; the session
re-authenticates from scratch after any failure.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Refresh interval (default from config, 5m)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	interval := cfg.GetPollInterval()
	if watchInterval > 0 {
		interval = watchInterval
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

	var pub *publisher.Publisher
	if cfg.MQTT.Enabled {
		pub, err = publisher.New(cfg.MQTT, cfg.GetTopicPrefix(), cfg.HomeAssistant)
		if err != nil {
			return fmt.Errorf("creating publisher: %w", err)
		}
		defer pub.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching portal every %s (Ctrl-C to stop)\n", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := runCycle(ctx, client, db, pub); err != nil {
			// The next cycle re-authenticates from scratch.
			fmt.Printf("⚠ Update failed: %v\n", err)
		}

		select {
		case <-ctx.Done():
			fmt.Println("Shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

func runCycle(ctx context.Context, client *hydro.Client, db *database.DB, pub *publisher.Publisher) error {
	cycleCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if err := client.Refresh(cycleCtx); err != nil {
		return err
	}

	usage, _ := client.Snapshot()
	for _, reading := range usage.Electricity {
		if err := db.InsertDaily(reading); err != nil {
			return fmt.Errorf("storing reading: %w", err)
		}
	}

	latest, _ := usage.Latest()
	fmt.Printf("✓ Refreshed at %s: %.2f kWh, $%.2f (latest reading %s)\n",
		time.Now().Format("15:04:05"),
		latest.Consumption, latest.Cost,
		humanize.Time(latest.Interval.Start))

	if pub != nil {
		if err := pub.PublishSnapshot(usage); err != nil {
			return fmt.Errorf("publishing snapshot: %w", err)
		}
	}

	return nil
}
