package extract

import (
	"regexp"
	"strings"

	"github.com/conlan-group/listings-cli/internal/model"
)

// maxImages caps the image list; galleries past twenty photos add noise, not
// signal, for a listing card.
const maxImages = 20

var (
	ogImageRe  = regexp.MustCompile(`(?i)<meta property="og:image" content="([^"]+)"`)
	imageURLRe = regexp.MustCompile(`(?i)https?://[^"'\s]+\.(?:jpg|jpeg|png|webp)`)
)

// imageCDNHosts are substrings identifying known real-estate photo CDNs.
var imageCDNHosts = []string{
	"photos.zillowstatic.com",
	"ssl.cdn-redfin.com",
	"ap.rdcpix.com",
}

// imageQualityMarkers appear in full-size photo URLs; thumbnails and site
// chrome images lack them.
var imageQualityMarkers = []string{"uncropped", "1024", "2048"}

// imageMiningTier finds listing photos when the structured-data tier yielded
// none: the og:image tag first, then bare image URLs mined from the page text
// and filtered to likely property photos. First-seen order is kept and
// duplicates dropped.
func imageMiningTier(rec model.ListingRecord, html string) model.ListingRecord {
	if len(rec.Images) > 0 {
		return rec
	}

	var candidates []string
	if m := ogImageRe.FindStringSubmatch(html); m != nil {
		candidates = append(candidates, m[1])
	}

	for _, u := range imageURLRe.FindAllString(html, -1) {
		if likelyPropertyImage(u) {
			candidates = append(candidates, u)
		}
	}

	seen := make(map[string]bool, len(candidates))
	for _, u := range candidates {
		if seen[u] {
			continue
		}
		seen[u] = true
		rec.Images = append(rec.Images, u)
		if len(rec.Images) == maxImages {
			break
		}
	}

	return rec
}

func likelyPropertyImage(u string) bool {
	lower := strings.ToLower(u)
	for _, host := range imageCDNHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	for _, marker := range imageQualityMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
