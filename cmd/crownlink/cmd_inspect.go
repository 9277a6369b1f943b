package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crownlink/internal/tables"
)

func inspectCmd() *cobra.Command {
	var tablesPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show entity counts for a parsed tables file without converting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tablesPath == "" {
				tablesPath = cfg.Input.TablesPath
			}
			if tablesPath == "" {
				return fmt.Errorf("inspect: no tables file given (flag --tables or input.tables_path)")
			}

			world, err := tables.Load(tablesPath)
			if err != nil {
				return fmt.Errorf("inspect: %w", err)
			}

			fmt.Printf("Savegame version: %s\n", world.Version)
			fmt.Printf("Start date:       %s\n", world.StartDate)
			fmt.Printf("End date:         %s\n", world.EndDate)
			fmt.Printf("Invasion:         %v\n\n", world.Invasion)

			fmt.Printf("%-16s %d\n", "Characters:", len(world.Characters))
			fmt.Printf("%-16s %d\n", "Titles:", len(world.Titles))
			fmt.Printf("%-16s %d\n", "Dynamic titles:", len(world.DynamicTitles))
			fmt.Printf("%-16s %d\n", "Provinces:", len(world.Provinces))
			fmt.Printf("%-16s %d\n", "Dynasties:", len(world.Dynasties))
			fmt.Printf("%-16s %d\n", "Wonders:", len(world.Wonders))
			fmt.Printf("%-16s %d\n", "Offmaps:", len(world.Offmaps))
			fmt.Printf("%-16s %d\n", "Relations:", len(world.Relations))
			return nil
		},
	}

	cmd.Flags().StringVar(&tablesPath, "tables", "", "path to the parsed tables JSON file")
	return cmd
}
