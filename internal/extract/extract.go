// Package extract turns raw listing HTML into a ListingRecord.
//
// Listing pages vary widely in markup, so extraction runs as a fixed pipeline
// of tiers ordered by reliability: embedded JSON-LD first, meta tags second,
// free-text pattern mining last. Each tier only fills fields still empty from
// earlier tiers, and a tier that finds nothing simply leaves the record
// untouched. Extraction never fails; the floor is a record holding only the
// source URL.
package extract

import (
	"strings"

	"github.com/conlan-group/listings-cli/internal/model"
)

// tier patches gaps in a partial record using the page HTML.
type tier func(rec model.ListingRecord, html string) model.ListingRecord

// tiers is the fixed extraction order. Later tiers must not overwrite fields
// an earlier tier populated.
var tiers = []tier{
	structuredDataTier,
	metaTitleTier,
	metaDescriptionTier,
	imageMiningTier,
	priceTier,
	bedBathTier,
}

// Extract parses listing HTML into a ListingRecord. Any field the page does
// not yield stays zero-valued; partial records are the normal outcome for
// pages with thin or mangled markup.
func Extract(html, sourceURL string) model.ListingRecord {
	rec := model.ListingRecord{Source: sourceURL}
	for _, t := range tiers {
		rec = t(rec, html)
	}
	return finalize(rec)
}

// finalize derives the headline and cleans the description.
func finalize(rec model.ListingRecord) model.ListingRecord {
	if addr := rec.Address(); addr != "" {
		rec.Headline = strings.TrimSpace(rec.Street + ", " + rec.City + ", " + strings.TrimSpace(rec.State+" "+rec.Zip))
	}
	rec.Description = sanitizeText(rec.Description)
	return rec
}
