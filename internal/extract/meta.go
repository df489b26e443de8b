package extract

import (
	"regexp"
	"strings"

	"github.com/conlan-group/listings-cli/internal/model"
)

var (
	ogTitleRe  = regexp.MustCompile(`(?i)<meta property="og:title" content="([^"]+)"`)
	ogDescRe   = regexp.MustCompile(`(?i)<meta property="og:description" content="([^"]+)"`)
	metaDescRe = regexp.MustCompile(`(?i)<meta name="description" content="([^"]+)"`)
)

// metaTitleTier recovers the address from the og:title tag, which listing
// sites render as "Street, City, ST ZIP". Runs only when the structured-data
// tier found no street.
func metaTitleTier(rec model.ListingRecord, html string) model.ListingRecord {
	if rec.Street != "" {
		return rec
	}

	m := ogTitleRe.FindStringSubmatch(html)
	if m == nil {
		return rec
	}

	parts := strings.Split(m[1], ",")
	if len(parts) < 3 {
		return rec
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	rec.Street = parts[0]
	rec.City = parts[1]

	stateZip := strings.Fields(parts[2])
	if len(stateZip) > 0 {
		rec.State = stateZip[0]
	}
	if len(stateZip) > 1 {
		rec.Zip = stateZip[1]
	}

	return rec
}

// metaDescriptionTier fills the description from og:description or the plain
// description meta tag when earlier tiers left it empty.
func metaDescriptionTier(rec model.ListingRecord, html string) model.ListingRecord {
	if rec.Description != "" {
		return rec
	}

	if m := ogDescRe.FindStringSubmatch(html); m != nil {
		rec.Description = m[1]
		return rec
	}
	if m := metaDescRe.FindStringSubmatch(html); m != nil {
		rec.Description = m[1]
	}
	return rec
}
