package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func matchCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "match <path>",
		Short: "Match a path against the route table",
		Long: `Match a path against the manifest's route table the way the
dispatcher would, and print the winning pattern and its extracted
parameters. Exits non-zero when no route matches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			router, err := loadRouter(file)
			if err != nil {
				return err
			}

			match, ok := router.Resolve(args[0])
			if !ok {
				return fmt.Errorf("no route matches %q", args[0])
			}

			fmt.Printf("pattern: %s\n", match.Route.Pattern())
			if name := match.Route.Name(); name != "" {
				fmt.Printf("name:    %s\n", name)
			}
			if len(match.Params) > 0 {
				keys := make([]string, 0, len(match.Params))
				for k := range match.Params {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				fmt.Println("params:")
				for _, k := range keys {
					fmt.Printf("  %s = %s\n", k, match.Params[k])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "routes.json", "Route manifest file")

	return cmd
}
