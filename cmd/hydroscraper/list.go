package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored usage data",
	Long:  `Displays all stored daily electricity readings from the database.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.ListDaily()
	if err != nil {
		return fmt.Errorf("listing data: %w", err)
	}

	if len(rows) == 0 {
		fmt.Println("No data found")
		return nil
	}

	fmt.Println("\nBC Hydro Usage Data:")
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("%-12s  %10s  %10s  %s\n", "Date", "kWh", "Cost", "Fetched")
	fmt.Println("------------------------------------------------------------")

	var totalKWh, totalCost float64
	for _, row := range rows {
		fmt.Printf("%-12s  %10.2f  %9.2f$  %s\n",
			row.Reading.Interval.Start.Format("2006-01-02"),
			row.Reading.Consumption,
			row.Reading.Cost,
			humanize.Time(row.CreatedAt))
		totalKWh += row.Reading.Consumption
		totalCost += row.Reading.Cost
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Total: %.2f kWh, $%.2f (%d records)\n", totalKWh, totalCost, len(rows))
	return nil
}
