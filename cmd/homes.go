package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conlan-group/listings-cli/internal/store"
)

var homesCmd = &cobra.Command{
	Use:   "homes",
	Short: "Manage stored listings",
}

var (
	homesCity   string
	homesState  string
	homesLimit  int
	homesOffset int
)

var homesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		listings, err := st.ListListings(ctx, store.ListingFilter{
			City:   homesCity,
			State:  homesState,
			Limit:  homesLimit,
			Offset: homesOffset,
		})
		if err != nil {
			return eris.Wrap(err, "list listings")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	},
}

var homesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one stored listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		listing, err := st.GetListing(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "get listing %s", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	},
}

var homesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteListing(ctx, args[0]); err != nil {
			return eris.Wrapf(err, "delete listing %s", args[0])
		}
		zap.L().Info("listing deleted", zap.String("id", args[0]))
		return nil
	},
}

var homesMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the listings schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}
		zap.L().Info("schema up to date", zap.String("driver", cfg.Store.Driver))
		return nil
	},
}

func init() {
	homesListCmd.Flags().StringVar(&homesCity, "city", "", "filter by city")
	homesListCmd.Flags().StringVar(&homesState, "state", "", "filter by state")
	homesListCmd.Flags().IntVar(&homesLimit, "limit", 100, "max listings to return")
	homesListCmd.Flags().IntVar(&homesOffset, "offset", 0, "listings to skip")

	homesCmd.AddCommand(homesListCmd, homesGetCmd, homesDeleteCmd, homesMigrateCmd)
	rootCmd.AddCommand(homesCmd)
}
