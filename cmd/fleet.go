package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrewgierens/tessie2mqtt/config"
	"github.com/andrewgierens/tessie2mqtt/core/state"
	"github.com/andrewgierens/tessie2mqtt/simulator"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List vehicles from a one-shot fetch",
	RunE:  runFleetLs,
}

func init() {
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Fleet.Source != "sim" {
		return fmt.Errorf("unknown fleet source %q", cfg.Fleet.Source)
	}
	src := simulator.NewFleet(cfg.Fleet.Simulator)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	records, err := src.Fetch(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		vin, ok := state.GetString(rec, cfg.Fleet.IDField)
		if !ok {
			continue
		}
		name, _ := state.GetString(rec, "last_state.display_name")
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", vin, name)
	}
	return nil
}
