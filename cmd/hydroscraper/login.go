package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/hydroscraper/internal/config"
	"github.com/jgoulah/hydroscraper/internal/hydro"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Validate the configured portal credentials",
	Long: `Performs one real refresh against the BC Hydro portal to verify that the
configured username and password work, and saves the resulting session cookies
to the config file for diagnostics. Run this after editing config.yaml.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	session, err := hydro.NewChromeSession(cfg.BCHydro.Username, cfg.BCHydro.Password, cfg.BCHydro.Visible)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	client := hydro.NewClient(session)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Println("Validating credentials against the portal...")
	if err := client.Refresh(ctx); err != nil {
		var authErr *hydro.AuthError
		if errors.As(err, &authErr) {
			return fmt.Errorf("invalid credentials: %s", authErr.Message)
		}
		return fmt.Errorf("validating credentials: %w", err)
	}

	usage, _ := client.Snapshot()
	fmt.Printf("✓ Login successful (%d daily readings visible)\n", len(usage.Electricity))
	if usage.Account != nil {
		fmt.Printf("  Account: %s (%s %s)\n", usage.Account.AccountID, usage.Account.FirstName, usage.Account.LastName)
	}

	cookies, err := session.ExportCookies(ctx)
	if err != nil {
		fmt.Printf("⚠ Could not extract session cookies: %v\n", err)
		return nil
	}

	cfg.BCHydro.Cookies = cookies
	if err := config.Save(getConfigPath(), cfg); err != nil {
		fmt.Printf("⚠ Could not save session cookies: %v\n", err)
		return nil
	}

	fmt.Printf("✓ Saved %d session cookies\n", len(cookies))
	return nil
}
