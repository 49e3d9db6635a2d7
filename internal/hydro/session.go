package hydro

import (
	"context"

	"github.com/jgoulah/hydroscraper/pkg/models"
)

// Session drives one authenticated browser session against the customer
// portal and produces raw markup fragments for the parser. Implementations
// are not safe for concurrent use; the caller serializes refreshes.
type Session interface {
	// Authenticate logs in to the portal. No-op when the session is still
	// authenticated from a previous call.
	Authenticate(ctx context.Context) error

	// FetchConsumptionFragment navigates to the consumption view and returns
	// the consumption table section's HTML. Requires a prior successful
	// Authenticate; any failure invalidates the session.
	FetchConsumptionFragment(ctx context.Context) (string, error)

	// FetchAccount retrieves the account details of the authenticated
	// session. Account data is optional; callers tolerate failure.
	FetchAccount(ctx context.Context) (*models.Account, error)

	// Invalidate marks the session as requiring re-authentication on the
	// next Authenticate call. The browser instance is kept.
	Invalidate()

	// Close releases the underlying browser process. Safe to call multiple
	// times.
	Close() error
}
