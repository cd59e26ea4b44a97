package catalog

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor finds a candidate image URL in a product detail page.
// Extractors are pure: they only read the document.
type Extractor func(doc *goquery.Document) (string, bool)

// Attribute names tried by [DefaultExtractors], in order.
const (
	AttrDynamicImage = "data-a-dynamic-image"
	AttrOldHires     = "data-old-hires"
	AttrSrc          = "src"
)

// defaultSelectors lists the main-image locations of common product page
// layouts (regular listings, books, e-books, legacy pages).
var defaultSelectors = []string{
	"#landingImage",
	"#imgBlkFront",
	"#ebooksImgBlkFront",
	"#main-image",
	"img.a-dynamic-image",
}

// DefaultExtractors returns the built-in extractor list.
func DefaultExtractors() []Extractor {
	out := make([]Extractor, len(defaultSelectors))
	for i, sel := range defaultSelectors {
		out[i] = SelectorExtractor(sel, AttrDynamicImage, AttrOldHires, AttrSrc)
	}
	return out
}

// SelectorExtractor returns an Extractor reading the first element matching
// selector. Attributes are tried in order; [AttrDynamicImage] is parsed as a
// JSON map of URL to [width, height] and yields the largest image.
func SelectorExtractor(selector string, attrs ...string) Extractor {
	return func(doc *goquery.Document) (string, bool) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		for _, attr := range attrs {
			val, ok := sel.Attr(attr)
			if !ok {
				continue
			}
			val = strings.TrimSpace(val)
			if attr == AttrDynamicImage {
				val, ok = largestDynamicImage(val)
				if !ok {
					continue
				}
			}
			if val == "" || strings.HasPrefix(val, "data:") {
				continue
			}
			return val, true
		}
		return "", false
	}
}

// largestDynamicImage picks the URL with the largest area from a
// data-a-dynamic-image value. Equal areas resolve to the smallest URL so the
// choice does not depend on map order.
func largestDynamicImage(raw string) (string, bool) {
	var sizes map[string][]float64
	if err := json.Unmarshal([]byte(raw), &sizes); err != nil || len(sizes) == 0 {
		return "", false
	}

	urls := make([]string, 0, len(sizes))
	for u := range sizes {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	best, bestArea := "", -1.0
	for _, u := range urls {
		dims := sizes[u]
		area := 0.0
		if len(dims) >= 2 {
			area = dims[0] * dims[1]
		}
		if area > bestArea {
			best, bestArea = u, area
		}
	}
	return best, best != ""
}

// Candidates runs extractors in order and returns the distinct image URLs
// they found, resolved against base. Protocol-relative URLs get https.
func Candidates(doc *goquery.Document, extractors []Extractor, base *url.URL) []string {
	var out []string
	seen := make(map[string]bool)
	for _, extract := range extractors {
		raw, ok := extract(doc)
		if !ok {
			continue
		}
		u, ok := normalizeURL(raw, base)
		if !ok || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func normalizeURL(raw string, base *url.URL) (string, bool) {
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if !u.IsAbs() {
		if base == nil {
			return "", false
		}
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}
