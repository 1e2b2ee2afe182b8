package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rendis/flowedit/internal/render"
)

func inspectCmd(root *rootOptions) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the sample workflow snapshot as JSON",
		Long: `Print the sample workflow snapshot as JSON.

With --query, the snapshot is filtered through a jq expression and every
result is printed on its own line, e.g.

  flowedit inspect --query '.nodes[] | select(.kind == "condition") | .label'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}
			a := newApp(cfg, cmd.ErrOrStderr(), nil)
			defer a.close()

			snap := render.Build(a.editor)
			snap.Title = "sample workflow"

			enc := json.NewEncoder(cmd.OutOrStdout())
			if query == "" {
				enc.SetIndent("", "  ")
				return enc.Encode(snap.Document())
			}
			results, err := render.NewQuery().Run(cmd.Context(), query, snap)
			if err != nil {
				return err
			}
			for _, r := range results {
				if err := enc.Encode(r); err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "jq expression applied to the snapshot")
	return cmd
}
