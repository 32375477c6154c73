// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strconv"
	"strings"

	"srodbpatch/cli/internal/catalog"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var showSQL bool

// patchesCmd lists the catalog, or describes one patch when given a name.
var patchesCmd = &cobra.Command{
	Use:   "patches [patch]",
	Short: "List the available patches",
	Long: `Without arguments, lists every patch with the tables it backs up. With a patch
name or number, shows its description and, with --sql, its statements.`,
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return catalog.Names(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			p, err := resolvePatch(strings.Join(args, " "))
			if err != nil {
				return err
			}
			describePatch(p)
			return nil
		}

		rows := [][]string{{"#", "Patch", "Tables", "Statements"}}
		for i, p := range catalog.All() {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				p.Name,
				strings.Join(p.BackupTables, ", "),
				strconv.Itoa(len(p.Statements)),
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}
		pterm.Println()
		pterm.Println("Show details with: srodbpatch patches <name|#> [--sql]")
		return nil
	},
}

func describePatch(p catalog.Patch) {
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint(p.Name))
	pterm.Println(p.Description)
	pterm.Println()
	pterm.Println("Backup tables:")
	items := make([]pterm.BulletListItem, len(p.BackupTables))
	for i, t := range p.BackupTables {
		items[i] = pterm.BulletListItem{Level: 0, Text: t}
	}
	_ = pterm.DefaultBulletList.WithItems(items).Render()
	pterm.Printf("Statements: %d\n", len(p.Statements))

	if showSQL {
		pterm.Println()
		for i, stmt := range p.Statements {
			pterm.Println(pterm.NewStyle(pterm.FgGray).Sprintf("-- %d/%d", i+1, len(p.Statements)))
			pterm.Println(stmt)
		}
	}
}

func init() {
	rootCmd.AddCommand(patchesCmd)
	patchesCmd.Flags().BoolVar(&showSQL, "sql", false, "Print the statements of the selected patch")
}
