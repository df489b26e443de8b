package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/conlan-group/listings-cli/internal/extract"
	"github.com/conlan-group/listings-cli/internal/model"
	"github.com/conlan-group/listings-cli/internal/store"
)

var (
	imagesDir         string
	imagesConcurrency int
)

var imagesCmd = &cobra.Command{
	Use:   "images <listing-url-or-id>",
	Short: "Download a listing's images to a directory",
	Long:  "Accepts either a supported listing page URL, which is fetched and extracted on the fly, or the id of a stored listing.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		images, label, err := listingImages(ctx, args[0])
		if err != nil {
			return err
		}
		if len(images) == 0 {
			zap.L().Info("listing has no images", zap.String("listing", label))
			return nil
		}

		if err := os.MkdirAll(imagesDir, 0o755); err != nil {
			return eris.Wrap(err, "create output directory")
		}

		client := &http.Client{Timeout: 30 * time.Second}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(imagesConcurrency)

		var saved atomic.Int64
		for i, imgURL := range images {
			g.Go(func() error {
				dest := filepath.Join(imagesDir, imageFileName(i, imgURL))
				if err := downloadImage(gctx, client, imgURL, dest); err != nil {
					zap.L().Warn("image download failed",
						zap.String("url", imgURL),
						zap.Error(err),
					)
					return nil
				}
				saved.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("images downloaded",
			zap.String("listing", label),
			zap.Int64("saved", saved.Load()),
			zap.Int("total", len(images)),
		)
		return nil
	},
}

// listingImages produces the image URLs for the argument: a supported
// listing URL is fetched and extracted, anything else is treated as a
// stored listing id.
func listingImages(ctx context.Context, arg string) ([]string, string, error) {
	if model.SupportedListingURL(arg) {
		fetcher := buildFetcher(cfg.Fetch)
		html, err := fetcher.Fetch(ctx, arg)
		if err != nil {
			return nil, "", eris.Wrap(err, "fetch listing page")
		}
		record := extract.Extract(html, arg)
		return record.Images, arg, nil
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, "", err
	}
	defer st.Close()

	listing, err := st.GetListing(ctx, arg)
	if err != nil {
		return nil, "", eris.Wrapf(err, "get listing %s", arg)
	}
	return listing.Record.Images, listing.ID, nil
}

// imageFileName derives a stable local name from the image URL, keeping the
// original extension when it has one.
func imageFileName(index int, raw string) string {
	ext := ".jpg"
	if u, err := url.Parse(raw); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e != "" && len(e) <= 5 {
			ext = e
		}
	}
	return fmt.Sprintf("image_%03d%s", index+1, ext)
}

func downloadImage(ctx context.Context, client *http.Client, src, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return eris.Wrap(err, "fetch image")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "create file")
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return eris.Wrap(err, "write file")
	}
	return nil
}

func init() {
	imagesCmd.Flags().StringVar(&imagesDir, "dir", "images", "output directory")
	imagesCmd.Flags().IntVar(&imagesConcurrency, "concurrency", 4, "parallel downloads")
	rootCmd.AddCommand(imagesCmd)
}
