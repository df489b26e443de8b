package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/conlan-group/listings-cli/internal/model"
)

var jsonLDRe = regexp.MustCompile(`(?is)<script type="application/ld\+json"[^>]*>(.*?)</script>`)

// residentialTypes are the JSON-LD @type values that denote a property
// listing, as opposed to breadcrumbs, organizations, and other blocks sites
// embed alongside.
var residentialTypes = map[string]bool{
	"singlefamilyresidence": true,
	"apartment":             true,
	"house":                 true,
}

// structuredDataTier reads the page's embedded JSON-LD block, the most
// reliable source when present. Parse errors are logged and swallowed; the
// remaining tiers still run.
func structuredDataTier(rec model.ListingRecord, html string) model.ListingRecord {
	m := jsonLDRe.FindStringSubmatch(html)
	if m == nil {
		return rec
	}

	var raw any
	if err := json.Unmarshal([]byte(m[1]), &raw); err != nil {
		zap.L().Debug("extract: json-ld parse failed", zap.Error(err))
		return rec
	}

	obj := selectListing(raw)
	if obj == nil {
		return rec
	}

	if addr, ok := obj["address"].(map[string]any); ok {
		rec.Street = stringField(addr, "streetAddress")
		rec.City = stringField(addr, "addressLocality")
		rec.State = stringField(addr, "addressRegion")
		rec.Zip = stringField(addr, "postalCode")
	}

	rec.Description = stringField(obj, "description")

	switch img := obj["image"].(type) {
	case string:
		rec.Images = []string{img}
	case []any:
		for _, v := range img {
			if s, ok := v.(string); ok {
				rec.Images = append(rec.Images, s)
			}
		}
	}

	// numberOfRooms is the closest JSON-LD analog to a bedroom count.
	if rooms, ok := intField(obj, "numberOfRooms"); ok {
		rec.Bedrooms = rooms
	}

	return rec
}

// selectListing picks the residential entry out of a JSON-LD value. A lone
// object is taken as-is; an array is scanned for the first entry whose @type
// denotes a residence.
func selectListing(raw any) map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		return v
	case []any:
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if typ, ok := obj["@type"].(string); ok && residentialTypes[strings.ToLower(typ)] {
				return obj
			}
		}
	}
	return nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// intField reads a numeric field that sites serialize as either a JSON number
// or a string.
func intField(obj map[string]any, key string) (int, bool) {
	switch v := obj[key].(type) {
	case float64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
	}
	return 0, false
}
