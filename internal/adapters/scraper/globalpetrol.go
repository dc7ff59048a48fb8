// Package scraper reads fuel prices from the globalpetrolprices.com country table.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/samirrijal/tunitrip/internal/core/ports"
	"github.com/samirrijal/tunitrip/internal/pkg/httpclient"
)

const (
	DefaultURL       = "https://www.globalpetrolprices.com/Tunisia/"
	DefaultCountry   = "Tunisia"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"
)

// GlobalPetrolPrices implements ports.PriceSource.
type GlobalPetrolPrices struct {
	url     string
	country string
	http    *httpclient.Client
}

// New creates a price source for country. Empty arguments take the defaults.
func New(url, country, userAgent string, timeout time.Duration) *GlobalPetrolPrices {
	if url == "" {
		url = DefaultURL
	}
	if country == "" {
		country = DefaultCountry
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &GlobalPetrolPrices{url: url, country: country, http: httpclient.New(timeout, userAgent)}
}

func (s *GlobalPetrolPrices) Name() string { return "globalpetrolprices.com" }

// FetchPrices downloads the page and extracts the country's row. The values
// are returned as found; currency correction is left to the caller.
func (s *GlobalPetrolPrices) FetchPrices(ctx context.Context) (ports.RawPrices, error) {
	body, err := s.http.Get(ctx, s.url)
	if err != nil {
		return ports.RawPrices{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ports.RawPrices{}, fmt.Errorf("parse html: %w", err)
	}
	return ParseTable(doc, s.country)
}

// ParseTable scans "table.countries tr" for a row whose first cell is country
// and reads gasoline from the second cell and diesel from the third. Both must
// parse, otherwise ErrPriceNotFound is returned.
func ParseTable(doc *goquery.Document, country string) (ports.RawPrices, error) {
	var (
		prices     ports.RawPrices
		gotG, gotD bool
	)
	doc.Find("table.countries tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() <= 2 || strings.TrimSpace(cols.Eq(0).Text()) != country {
			return
		}
		if v, ok := parsePrice(cols.Eq(1).Text()); ok {
			prices.Gasoline, gotG = v, true
		}
		if v, ok := parsePrice(cols.Eq(2).Text()); ok {
			prices.Diesel, gotD = v, true
		}
	})

	if !gotG || !gotD || prices.Gasoline == 0 || prices.Diesel == 0 {
		return ports.RawPrices{}, ports.ErrPriceNotFound
	}
	return prices, nil
}

// parsePrice accepts a decimal comma and ignores trailing text after the
// leading number ("2,525 TND" reads as 2.525).
func parsePrice(text string) (float64, bool) {
	s := strings.Replace(strings.TrimSpace(text), ",", ".", 1)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || (end == 0 && (s[end] == '-' || s[end] == '+'))) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
