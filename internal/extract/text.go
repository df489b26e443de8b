package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/conlan-group/listings-cli/internal/model"
)

var (
	priceRe = regexp.MustCompile(`\$[\d,]+`)
	bedsRe  = regexp.MustCompile(`(?i)(\d+)\s*(?:bed|bd|bedroom)`)
	bathsRe = regexp.MustCompile(`(?i)([\d.]+)\s*(?:bath|ba|bathroom)`)
	wsRe    = regexp.MustCompile(`\s+`)
)

// priceTier takes the first dollar-amount token anywhere in the page. Raw
// pages format prices too inconsistently to parse into a number, so the token
// is kept verbatim.
func priceTier(rec model.ListingRecord, html string) model.ListingRecord {
	if rec.Price != "" {
		return rec
	}
	if m := priceRe.FindString(html); m != "" {
		rec.Price = m
	}
	return rec
}

// bedBathTier mines bed and bath counts from free text patterns like
// "4 bd" or "2.5 ba".
func bedBathTier(rec model.ListingRecord, html string) model.ListingRecord {
	if rec.Bedrooms == 0 {
		if m := bedsRe.FindStringSubmatch(html); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				rec.Bedrooms = n
			}
		}
	}
	if rec.Bathrooms == 0 {
		if m := bathsRe.FindStringSubmatch(html); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				rec.Bathrooms = f
			}
		}
	}
	return rec
}

var entityReplacer = strings.NewReplacer(
	"&quot;", `"`,
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
)

// sanitizeText decodes common HTML entities, collapses whitespace runs to a
// single space, and trims the result.
func sanitizeText(s string) string {
	s = entityReplacer.Replace(s)
	s = wsRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
