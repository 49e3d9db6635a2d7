package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/hydroscraper/internal/publisher"
)

var publishLimit int

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish stored usage data to Home Assistant",
	Long: `Reads stored daily readings that have not yet been published and pushes
them to Home Assistant via its HTTP API, oldest first.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Limit number of records to publish (0 = no limit)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !cfg.HomeAssistant.Enabled {
		return fmt.Errorf("Home Assistant is not enabled in config")
	}

	pub, err := publisher.New(cfg.MQTT, cfg.GetTopicPrefix(), cfg.HomeAssistant)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.ListUnpublished()
	if err != nil {
		return fmt.Errorf("listing unpublished data: %w", err)
	}

	if len(rows) == 0 {
		fmt.Println("Nothing to publish")
		return nil
	}

	published := 0
	for _, row := range rows {
		if publishLimit > 0 && published >= publishLimit {
			break
		}

		if err := pub.PublishBackfill(row.Reading); err != nil {
			return fmt.Errorf("publishing %s: %w", row.Reading.Interval.Start.Format("2006-01-02"), err)
		}

		if err := db.MarkPublished(row.ID); err != nil {
			return fmt.Errorf("marking published: %w", err)
		}

		published++
	}

	fmt.Printf("✓ Published %d records\n", published)
	return nil
}
