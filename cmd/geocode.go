package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <address>...",
	Short: "Resolve an address to coordinates within the configured region",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address := strings.Join(args, " ")

		resolver, err := buildResolver(cfg.Geocode)
		if err != nil {
			return err
		}

		res := resolver.Resolve(cmd.Context(), address)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
		if !res.Accepted {
			// Exit nonzero without bypassing PersistentPostRun.
			exitCode = 1
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
