package hydro

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jgoulah/hydroscraper/internal/config"
)

// ExportCookies returns the session cookies of the running browser. Useful
// for diagnosing session expiry against the portal out of band; the login
// command saves these to the config file.
func (s *ChromeSession) ExportCookies(ctx context.Context) ([]config.Cookie, error) {
	if s.browserCtx == nil {
		return nil, &AuthError{Message: "browser not running"}
	}

	opCtx, cancel := s.opContext(ctx, accountTimeout)
	defer cancel()

	var cookies []*network.Cookie
	if err := chromedp.Run(opCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = network.GetCookies().Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("getting cookies: %w", err)
	}

	result := make([]config.Cookie, 0, len(cookies))
	for _, c := range cookies {
		result = append(result, config.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: c.SameSite.String(),
		})
	}

	return result, nil
}
