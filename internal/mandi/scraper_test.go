package mandi

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const priceTableHTML = `
<table class="prices">
  <tbody>
    <tr><td>1</td><td>Finger Millet</td><td>4,500</td><td>02 Mar 2026</td></tr>
    <tr><td>2</td><td>Wheat</td><td>2,400</td><td>02 Mar 2026</td></tr>
    <tr><td>3</td><td>Finger Millet</td><td>n/a</td><td>03 Mar 2026</td></tr>
    <tr><td>4</td><td>Finger Millet</td><td>4,600</td><td>someday</td></tr>
  </tbody>
</table>`

func testSelectors() TableSelectors {
	return TableSelectors{
		Table:     "table.prices",
		Row:       "tbody tr",
		Commodity: "td:nth-child(2)",
		Price:     "td:nth-child(3)",
		Date:      "td:nth-child(4)",
	}
}

func TestParseRow(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(priceTableHTML))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	sel := testSelectors()
	parsed := 0
	doc.Find(sel.Row).Each(func(_ int, row *goquery.Selection) {
		sample, ok := parseRow(row, sel, "Finger Millet")
		if !ok {
			return
		}
		parsed++
		if sample.MilletType != "Finger Millet" {
			t.Errorf("Expected Finger Millet, got %s", sample.MilletType)
		}
		// 4500 Rs/quintal converts to 45 Rs/kg.
		if sample.Price != 45 {
			t.Errorf("Expected price 45, got %f", sample.Price)
		}
		want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		if !sample.Timestamp.Equal(want) {
			t.Errorf("Expected timestamp %v, got %v", want, sample.Timestamp)
		}
	})

	// Only the first row survives: wrong commodity, bad price, and bad date
	// rows are all skipped.
	if parsed != 1 {
		t.Errorf("Expected exactly 1 parsed row, got %d", parsed)
	}
}

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, text := range []string{"02 Mar 2026", "02-03-2026", "2026-03-02", "02/03/2026"} {
		got, ok := parseDate(text)
		if !ok {
			t.Errorf("Expected %q to parse", text)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("Expected %q to parse to %v, got %v", text, want, got)
		}
	}

	if _, ok := parseDate("yesterday"); ok {
		t.Error("Expected unparsable date to be rejected")
	}
}

func TestNewScraperDefaults(t *testing.T) {
	s := NewScraper(2 * time.Second)
	if len(s.sources) == 0 {
		t.Fatal("Expected default sources to be configured")
	}
	for _, src := range s.sources {
		if src.BaseURL == "" || src.Selectors.Table == "" {
			t.Errorf("Expected source %s to be fully configured", src.Name)
		}
	}
}
