package hydro

import (
	"context"

	"github.com/jgoulah/hydroscraper/pkg/models"
)

// Client is the facade over the session controller and the markup parser.
// It holds at most one snapshot, the latest successful fetch; a failed
// refresh leaves the previous snapshot untouched. Not safe for concurrent
// use; the polling layer calls one refresh at a time.
type Client struct {
	session Session
	rates   models.Rates

	usage  *models.DailyUsage
	latest *models.DailyElectricity
}

// NewClient creates a client over the given session, carrying the default
// step rates onto each snapshot.
func NewClient(session Session) *Client {
	return &Client{session: session, rates: DefaultRates()}
}

// SetRates overrides the step rates stamped onto subsequent snapshots, for
// operators tracking a rate change ahead of a release.
func (c *Client) SetRates(rates models.Rates) {
	c.rates = rates
}

// Refresh fetches a fresh snapshot from the portal. The cached snapshot and
// latest point are replaced only when every stage succeeds; any stage
// failure propagates as its typed error and forces re-authentication on the
// next attempt.
func (c *Client) Refresh(ctx context.Context) error {
	if err := c.session.Authenticate(ctx); err != nil {
		return err
	}

	// Account details are optional; flows without an account chooser may
	// not expose them at all.
	account, err := c.session.FetchAccount(ctx)
	if err != nil {
		account = nil
	}

	html, err := c.session.FetchConsumptionFragment(ctx)
	if err != nil {
		return err
	}

	doc, err := Validate(html)
	if err != nil {
		c.session.Invalidate()
		return err
	}

	electricity, err := ParseConsumptionTable(doc)
	if err != nil {
		c.session.Invalidate()
		return err
	}

	usage := BuildDailyUsage(account, electricity, c.rates)
	latest, _ := usage.Latest()
	c.usage = usage
	c.latest = &latest
	return nil
}

// ensureData refreshes lazily when nothing has been fetched yet.
func (c *Client) ensureData(ctx context.Context) error {
	if c.latest != nil {
		return nil
	}
	return c.Refresh(ctx)
}

// LatestUsage returns the most recent day's consumption in kWh, refreshing
// first if no snapshot is cached. An error, not a zero value, signals that
// no data could be obtained.
func (c *Client) LatestUsage(ctx context.Context) (float64, error) {
	if err := c.ensureData(ctx); err != nil {
		return 0, err
	}
	return c.latest.Consumption, nil
}

// LatestCost returns the most recent day's cost in dollars, refreshing
// first if no snapshot is cached.
func (c *Client) LatestCost(ctx context.Context) (float64, error) {
	if err := c.ensureData(ctx); err != nil {
		return 0, err
	}
	return c.latest.Cost, nil
}

// LatestInterval returns the interval of the most recent reading,
// refreshing first if no snapshot is cached.
func (c *Client) LatestInterval(ctx context.Context) (models.Interval, error) {
	if err := c.ensureData(ctx); err != nil {
		return models.Interval{}, err
	}
	return c.latest.Interval, nil
}

// Snapshot returns the cached snapshot without touching the portal. The
// second return distinguishes "never fetched" from a snapshot with zero
// readings.
func (c *Client) Snapshot() (*models.DailyUsage, bool) {
	if c.usage == nil {
		return nil, false
	}
	return c.usage, true
}

// Close releases the session's browser process.
func (c *Client) Close() error {
	return c.session.Close()
}
