package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conlan-group/listings-cli/internal/extract"
	"github.com/conlan-group/listings-cli/internal/model"
)

var (
	ingestSave        bool
	ingestSkipGeocode bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <listing-url>",
	Short: "Fetch a listing page, extract its record, and geocode the address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		url := args[0]

		if !model.SupportedListingURL(url) {
			return eris.Errorf("unsupported listing url %q", url)
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		html, err := env.Fetcher.Fetch(ctx, url)
		if err != nil {
			return eris.Wrap(err, "fetch listing page")
		}

		record := extract.Extract(html, url)
		listing := model.StoredListing{Record: record}

		if !ingestSkipGeocode {
			if addr := record.Address(); addr != "" {
				res := env.Resolver.Resolve(ctx, addr)
				if res.Accepted {
					listing.Latitude = res.Latitude
					listing.Longitude = res.Longitude
					zap.L().Info("address resolved",
						zap.String("address", addr),
						zap.String("strategy", res.Strategy),
					)
				} else {
					zap.L().Warn("address not resolved", zap.String("address", addr))
				}
			} else {
				zap.L().Warn("no address extracted, skipping geocode", zap.String("url", url))
			}
		}

		if ingestSave {
			saved, err := env.Store.SaveListing(ctx, listing)
			if err != nil {
				return eris.Wrap(err, "save listing")
			}
			listing = *saved
			zap.L().Info("listing saved", zap.String("id", listing.ID))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestSave, "save", false, "persist the listing to the store")
	ingestCmd.Flags().BoolVar(&ingestSkipGeocode, "skip-geocode", false, "skip address resolution")
	rootCmd.AddCommand(ingestCmd)
}
