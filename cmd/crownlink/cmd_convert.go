package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crownlink/internal/dynsource"
	"crownlink/internal/engine"
	"crownlink/internal/restructure"
	"crownlink/internal/tables"
)

func convertCmd() *cobra.Command {
	var tablesPath string
	var modsPath string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Run the full conversion pipeline over parsed save tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			if tablesPath == "" {
				tablesPath = cfg.Input.TablesPath
			}
			if tablesPath == "" {
				return fmt.Errorf("convert: no tables file given (flag --tables or input.tables_path)")
			}
			if modsPath == "" {
				modsPath = cfg.Input.ModsPath
			}

			world, err := tables.Load(tablesPath)
			if err != nil {
				return fmt.Errorf("convert: %w", err)
			}
			logger.Info("tables loaded",
				"characters", len(world.Characters),
				"titles", len(world.Titles),
				"provinces", len(world.Provinces),
				"dynasties", len(world.Dynasties))
			if world.Invasion {
				logger.Info("invasion detected, we are in for a ride")
			}

			shatterMode, err := cfg.ShatterMode()
			if err != nil {
				return fmt.Errorf("convert: %w", err)
			}
			hreMode, err := cfg.HREMode()
			if err != nil {
				return fmt.Errorf("convert: %w", err)
			}
			hreTag, err := cfg.ResolveHRETag()
			if err != nil {
				return fmt.Errorf("convert: %w", err)
			}

			opts := restructure.Options{
				HREMode: hreMode,
				HRETag:  hreTag,
				Shatter: shatterMode,
			}
			sources := dynsource.Discover(modsPath, logger)

			report := engine.New(world, opts, sources, logger).Run()

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("convert: encoding report: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tablesPath, "tables", "", "path to the parsed tables JSON file")
	cmd.Flags().StringVar(&modsPath, "mods", "", "path to the mods directory for supplementary dynasties")
	return cmd
}
