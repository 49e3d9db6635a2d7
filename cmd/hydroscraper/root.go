package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jgoulah/hydroscraper/internal/config"
	"github.com/jgoulah/hydroscraper/internal/database"
	"github.com/jgoulah/hydroscraper/internal/hydro"
)

var (
	cfgFile string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "hydroscraper",
	Short: "Scrape electricity usage and billing data from the BC Hydro portal",
	Long: `HydroScraper collects daily electricity usage and cost data from the BC Hydro
customer portal, which exposes no public API. It drives a headless browser through
login and navigation, parses the consumption table, stores readings in a local
SQLite database, and can publish them to MQTT or Home Assistant.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default is ./data.db)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path (local directory)
func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return "data.db"
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// openDB opens the database connection
func openDB() (*database.DB, error) {
	path := getDBPath()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path)
}

// newClient builds the portal client from config
func newClient(cfg *config.Config) (*hydro.Client, error) {
	session, err := hydro.NewChromeSession(cfg.BCHydro.Username, cfg.BCHydro.Password, cfg.BCHydro.Visible)
	if err != nil {
		return nil, err
	}

	client := hydro.NewClient(session)

	rates := hydro.DefaultRates()
	if cfg.Step1Rate > 0 {
		rates.Step1Rate = cfg.Step1Rate
	}
	if cfg.Step2Rate > 0 {
		rates.Step2Rate = cfg.Step2Rate
	}
	client.SetRates(rates)

	return client, nil
}
