package mandi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"millet-market-engine/internal/logger"
	"millet-market-engine/internal/types"
)

// Scraper pulls daily commodity prices from public mandi price boards.
type Scraper struct {
	sources   []PriceSource
	rateLimit time.Duration
}

var _ PriceFetcher = (*Scraper)(nil)

// PriceSource defines one mandi board to scrape.
type PriceSource struct {
	Name      string
	BaseURL   string
	QueryPath string // e.g. "/prices?commodity={crop}"
	Selectors TableSelectors
}

// TableSelectors defines CSS selectors for extracting price rows.
type TableSelectors struct {
	Table     string
	Row       string
	Commodity string
	Price     string
	Date      string
}

// NewScraper creates a scraper over the default mandi boards.
func NewScraper(rateLimit time.Duration) *Scraper {
	return &Scraper{
		sources:   defaultSources(),
		rateLimit: rateLimit,
	}
}

func defaultSources() []PriceSource {
	return []PriceSource{
		{
			Name:      "Agmarknet",
			BaseURL:   "https://agmarknet.gov.in",
			QueryPath: "/SearchCmmMkt.aspx?Tx_Commodity={crop}",
			Selectors: TableSelectors{
				Table:     "table.tableagmark_new",
				Row:       "tr",
				Commodity: "td:nth-child(4)",
				Price:     "td:nth-child(10)",
				Date:      "td:nth-child(12)",
			},
		},
		{
			Name:      "NapantaPrices",
			BaseURL:   "https://www.napanta.com",
			QueryPath: "/market-price/{crop}",
			Selectors: TableSelectors{
				Table:     "table.table-bordered",
				Row:       "tbody tr",
				Commodity: "td:nth-child(2)",
				Price:     "td:nth-child(5)",
				Date:      "td:nth-child(6)",
			},
		},
	}
}

// FetchPrices scrapes each source for each crop, tolerating per-source
// failures: any samples gathered are returned.
func (s *Scraper) FetchPrices(ctx context.Context, crops []string) ([]types.PriceSample, error) {
	timer := logger.StartOperation(ctx, "mandi.fetch_prices", "crops", len(crops), "sources", len(s.sources))
	ctx = timer.GetContext()

	all := []types.PriceSample{}
	for _, source := range s.sources {
		for _, crop := range crops {
			samples, err := s.scrapeSource(ctx, source, crop)
			if err != nil {
				logger.ErrorWithErr(ctx, "Failed to scrape mandi source", err, "source", source.Name, "crop", crop)
				continue
			}
			all = append(all, samples...)
			time.Sleep(s.rateLimit)
		}
	}

	timer.End("samples", len(all))
	return all, nil
}

func (s *Scraper) scrapeSource(ctx context.Context, source PriceSource, crop string) ([]types.PriceSample, error) {
	target := source.BaseURL + strings.ReplaceAll(source.QueryPath, "{crop}", strings.ReplaceAll(crop, " ", "+"))

	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (compatible; millet-market-engine/1.0)"),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(20 * time.Second)

	samples := []types.PriceSample{}
	var scrapeErr error

	c.OnHTML(source.Selectors.Table, func(e *colly.HTMLElement) {
		e.DOM.Find(source.Selectors.Row).Each(func(_ int, row *goquery.Selection) {
			sample, ok := parseRow(row, source.Selectors, crop)
			if !ok {
				return
			}
			samples = append(samples, sample)
		})
	})

	c.OnError(func(_ *colly.Response, err error) {
		scrapeErr = err
	})

	if err := c.Visit(target); err != nil {
		return nil, fmt.Errorf("visit %s: %w", target, err)
	}
	c.Wait()

	if scrapeErr != nil && len(samples) == 0 {
		return nil, scrapeErr
	}
	return samples, nil
}

// parseRow extracts one price sample from a table row. Rows with a foreign
// commodity, an unparsable price, or no date are skipped.
func parseRow(row *goquery.Selection, sel TableSelectors, crop string) (types.PriceSample, bool) {
	commodity := strings.TrimSpace(row.Find(sel.Commodity).Text())
	if commodity == "" || !strings.EqualFold(commodity, crop) {
		return types.PriceSample{}, false
	}

	priceText := strings.TrimSpace(row.Find(sel.Price).Text())
	priceText = strings.ReplaceAll(priceText, ",", "")
	price, err := strconv.ParseFloat(priceText, 64)
	if err != nil || price <= 0 {
		return types.PriceSample{}, false
	}

	dateText := strings.TrimSpace(row.Find(sel.Date).Text())
	ts, ok := parseDate(dateText)
	if !ok {
		return types.PriceSample{}, false
	}

	return types.PriceSample{
		MilletType: crop,
		// Boards quote Rs per quintal; listings trade in Rs per kg.
		Price:     price / 100,
		Timestamp: ts,
	}, true
}

var dateLayouts = []string{"02 Jan 2006", "02-01-2006", "2006-01-02", "02/01/2006"}

func parseDate(text string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
