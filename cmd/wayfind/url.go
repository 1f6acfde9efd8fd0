package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func urlCmd() *cobra.Command {
	var (
		file     string
		query    []string
		fragment string
	)

	cmd := &cobra.Command{
		Use:   "url <name> [param=value ...]",
		Short: "Generate a URL from a named route",
		Long: `Generate a URL from a named route in the manifest, substituting
the given param=value pairs into the pattern's placeholders.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			router, err := loadRouter(file)
			if err != nil {
				return err
			}

			params := make(map[string]string, len(args)-1)
			for _, arg := range args[1:] {
				key, value, found := strings.Cut(arg, "=")
				if !found || key == "" {
					return fmt.Errorf("invalid parameter %q, expected param=value", arg)
				}
				params[key] = value
			}

			values := url.Values{}
			for _, q := range query {
				key, value, found := strings.Cut(q, "=")
				if !found || key == "" {
					return fmt.Errorf("invalid query %q, expected key=value", q)
				}
				values.Add(key, value)
			}

			out, err := router.URLFor(args[0], params, values, fragment)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "routes.json", "Route manifest file")
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "Query parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&fragment, "fragment", "", "Fragment to append")

	return cmd
}
