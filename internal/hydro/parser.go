package hydro

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jgoulah/hydroscraper/pkg/models"
)

const (
	consumptionTableID = "consumptionTable"
	alertErrorSelector = ".alert.error:not(.hidden)"

	// Portal renders dates like "Jan 5, 2024"
	tableDateFormat = "Jan 2, 2006"
)

// Current BC Hydro residential step rates. Static constants carried onto
// every snapshot, not read from the portal.
const (
	step1Rate     = 0.0954
	step2Rate     = 0.1427
	rateThreshold = 1332.0
)

// Document wraps a parsed HTML fragment behind the small query surface the
// parser needs, so callers never depend on which session backend produced
// the markup.
type Document struct {
	doc *goquery.Document
}

// FindByID returns the first element with the given id attribute.
func (d *Document) FindByID(id string) *goquery.Selection {
	return d.doc.Find("#" + id)
}

// Select returns all elements matching a CSS selector.
func (d *Document) Select(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Validate parses an HTML fragment and rejects responses the parser cannot
// work with. A visible error banner takes precedence over structural
// validation because an error page may legitimately lack the expected table.
func Validate(html string) (*Document, error) {
	if strings.TrimSpace(html) == "" {
		return nil, &InvalidHTMLError{Message: "empty HTML response"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &InvalidHTMLError{Message: "parsing HTML: " + err.Error()}
	}

	alerts := doc.Find(alertErrorSelector)
	if alerts.Length() > 0 {
		var texts []string
		alerts.Each(func(_ int, s *goquery.Selection) {
			if t := strings.TrimSpace(s.Text()); t != "" {
				texts = append(texts, t)
			}
		})
		return nil, &AlertDialogError{Message: "alert dialog detected: " + strings.Join(texts, " ")}
	}

	return &Document{doc: doc}, nil
}

// ParseConsumptionTable extracts the daily readings from the consumption
// table, in the order the portal rendered them. Individual malformed rows
// are skipped rather than failing the whole fetch; utility portals are known
// to render occasional placeholder rows.
func ParseConsumptionTable(doc *Document) ([]models.DailyElectricity, error) {
	table := doc.FindByID(consumptionTableID)
	if table.Length() == 0 {
		return nil, &InvalidHTMLError{Message: "consumption table not found"}
	}

	var electricity []models.DailyElectricity
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			// Header row
			return
		}

		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		date, err := time.Parse(tableDateFormat, strings.TrimSpace(cells.Eq(0).Text()))
		if err != nil {
			return
		}

		consumption, err := strconv.ParseFloat(strings.TrimSpace(cells.Eq(1).Text()), 64)
		if err != nil {
			return
		}

		costStr := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cells.Eq(2).Text()), "$"))
		cost, err := strconv.ParseFloat(costStr, 64)
		if err != nil {
			return
		}

		electricity = append(electricity, models.DailyElectricity{
			Consumption: consumption,
			Cost:        cost,
			Interval: models.Interval{
				Start: date,
				End:   date,
			},
		})
	})

	if len(electricity) == 0 {
		return nil, &InvalidHTMLError{Message: "no valid consumption data"}
	}

	return electricity, nil
}

// DefaultRates returns the current BC Hydro residential step rates.
func DefaultRates() models.Rates {
	return models.Rates{
		Step1Rate: step1Rate,
		Step2Rate: step2Rate,
		Threshold: rateThreshold,
	}
}

// BuildDailyUsage assembles the aggregate snapshot from parsed rows. Rows
// are assumed chronological as rendered and are not re-sorted.
func BuildDailyUsage(account *models.Account, electricity []models.DailyElectricity, rates models.Rates) *models.DailyUsage {
	return &models.DailyUsage{
		Account: account,
		Interval: models.Interval{
			Start: electricity[0].Interval.Start,
			End:   electricity[len(electricity)-1].Interval.End,
		},
		Rates:       rates,
		Electricity: electricity,
	}
}
