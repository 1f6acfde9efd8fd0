package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func routesCmd() *cobra.Command {
	var (
		file   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List routes in scan order",
		Long: `List the routes of a manifest in the order the dispatcher scans
them: priority descending, registration order within a priority.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			router, err := loadRouter(file)
			if err != nil {
				return err
			}

			infos := router.Routes()
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATTERN\tNAME\tPRIORITY")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%d\n", info.Pattern, info.Name, info.Priority)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "routes.json", "Route manifest file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
