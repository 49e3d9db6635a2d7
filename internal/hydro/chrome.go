package hydro

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jgoulah/hydroscraper/pkg/models"
)

const (
	loginURL       = "https://app.bchydro.com/BCHCustomerPortal/web/login.html"
	accountJSONURL = "https://app.bchydro.com/evportlet/web/global-data.html"

	// Customized user agent so portal operators can identify this traffic
	userAgent = "hydroscraper (+https://github.com/jgoulah/hydroscraper)"

	usernameSelector    = `input#username`
	passwordSelector    = `input#password`
	loginSubmitSelector = `#loginSubmit`
	accountListSelector = `.accountListDiv`
	viewAndPaySelector  = `#ViewAndPayProfile`
	consumptionSection  = `#consumptionTableSection`

	authenticateTimeout = 45 * time.Second
	fragmentTimeout     = 30 * time.Second
	// Bounded wait for the consumption table to appear. A timeout here
	// usually means the session expired, not a slow page.
	tableWaitTimeout = 10 * time.Second
	accountTimeout   = 15 * time.Second
)

// ChromeSession drives the portal through a headless Chrome instance. The
// browser process is launched lazily on first use and reused across
// refreshes until Close.
type ChromeSession struct {
	username string
	password string
	visible  bool

	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	browserCtx    context.Context
	authenticated bool
}

// NewChromeSession creates a session for the given portal credentials.
// Set visible to show the browser window for debugging.
func NewChromeSession(username, password string, visible bool) (*ChromeSession, error) {
	if username == "" || password == "" {
		return nil, &ParamError{Message: "username and password are required"}
	}
	return &ChromeSession{
		username: username,
		password: password,
		visible:  visible,
	}, nil
}

// ensureBrowser launches the browser and opens one tab. No-op if already
// running. The browser context is rooted in the session, not the caller's
// context, so it survives individual refresh calls.
func (s *ChromeSession) ensureBrowser() error {
	if s.browserCtx != nil {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !s.visible),
		chromedp.Flag("no-sandbox", true),            // Required for running as root on Linux
		chromedp.Flag("disable-gpu", true),           // Recommended for headless Linux
		chromedp.Flag("disable-dev-shm-usage", true), // Avoid /dev/shm issues on Linux
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser process now so launch failures surface here rather
	// than mid-login.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("launching browser: %w", err)
	}

	s.allocCancel = allocCancel
	s.browserCancel = browserCancel
	s.browserCtx = browserCtx
	return nil
}

// opContext bounds a browser operation with a timeout and ties it to the
// caller's context for cancellation.
func (s *ChromeSession) opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(s.browserCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

// Authenticate logs in to the portal. No-op when already authenticated.
func (s *ChromeSession) Authenticate(ctx context.Context) error {
	if s.authenticated {
		return nil
	}

	if err := s.ensureBrowser(); err != nil {
		return &AuthError{Message: "authentication failed", Cause: err}
	}

	opCtx, cancel := s.opContext(ctx, authenticateTimeout)
	defer cancel()

	if err := s.login(opCtx); err != nil {
		s.authenticated = false
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return authErr
		}
		return &AuthError{Message: "authentication failed", Cause: err}
	}

	s.authenticated = true
	return nil
}

func (s *ChromeSession) login(ctx context.Context) error {
	if err := chromedp.Run(ctx,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(usernameSelector, chromedp.ByQuery),
		chromedp.SendKeys(usernameSelector, s.username, chromedp.ByQuery),
		chromedp.SendKeys(passwordSelector, s.password, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("filling login form: %w", err)
	}

	// RunResponse arms the navigation listener before the click fires, so
	// the page unload triggered by the submit cannot be missed.
	if _, err := chromedp.RunResponse(ctx, chromedp.Click(loginSubmitSelector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("submitting login form: %w", err)
	}

	banner, err := s.visibleAlertText(ctx)
	if err != nil {
		return fmt.Errorf("checking for error banner: %w", err)
	}
	if banner != "" {
		return &AuthError{Message: "login failed: " + banner}
	}

	// Accounts with multiple service addresses land on a chooser page;
	// select the first listed account.
	var hasChooser bool
	if err := chromedp.Run(ctx,
		chromedp.Evaluate(fmt.Sprintf(`document.querySelector(%q) !== null`, accountListSelector), &hasChooser),
	); err != nil {
		return fmt.Errorf("checking for account chooser: %w", err)
	}
	if hasChooser {
		if err := chromedp.Run(ctx, chromedp.Click(accountListSelector, chromedp.ByQuery)); err != nil {
			return fmt.Errorf("selecting first account: %w", err)
		}
	}

	return nil
}

// visibleAlertText returns the text of a visible error banner, or "" when
// none is present. Absence at query time is treated as success; this backend
// does not wait for a banner to appear.
func (s *ChromeSession) visibleAlertText(ctx context.Context) (string, error) {
	var text string
	err := chromedp.Run(ctx,
		chromedp.Evaluate(fmt.Sprintf(`
			(() => {
				const el = document.querySelector(%q);
				return el ? el.textContent.trim() : '';
			})()
		`, alertErrorSelector), &text),
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// FetchConsumptionFragment clicks through to the consumption view and
// extracts the table section's markup. Any failure, including the bounded
// wait timing out, invalidates the session since an expired session is
// indistinguishable from a missing element.
func (s *ChromeSession) FetchConsumptionFragment(ctx context.Context) (string, error) {
	if !s.authenticated {
		return "", &AuthError{Message: "not authenticated"}
	}

	opCtx, cancel := s.opContext(ctx, fragmentTimeout)
	defer cancel()

	html, err := s.fetchFragment(opCtx)
	if err != nil {
		s.authenticated = false
		return "", &AuthError{Message: "fetching consumption data", Cause: err}
	}

	return html, nil
}

func (s *ChromeSession) fetchFragment(ctx context.Context) (string, error) {
	if err := chromedp.Run(ctx, chromedp.Click(viewAndPaySelector, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("clicking view and pay: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, tableWaitTimeout)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitReady(consumptionSection, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("waiting for consumption table: %w", err)
	}

	var html string
	if err := chromedp.Run(ctx, chromedp.InnerHTML(consumptionSection, &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("extracting consumption table: %w", err)
	}

	return html, nil
}

// FetchAccount pulls the account details JSON through an in-page XHR so the
// session's cookies (including HTTP-only) apply to the request.
func (s *ChromeSession) FetchAccount(ctx context.Context) (*models.Account, error) {
	if !s.authenticated {
		return nil, &AuthError{Message: "not authenticated"}
	}

	opCtx, cancel := s.opContext(ctx, accountTimeout)
	defer cancel()

	var response string
	if err := chromedp.Run(opCtx,
		chromedp.Evaluate(fmt.Sprintf(`
			(() => {
				const xhr = new XMLHttpRequest();
				xhr.open('GET', '%s', false); // synchronous
				xhr.setRequestHeader('Accept', 'application/json');
				try {
					xhr.send();
					if (xhr.status === 200) {
						return xhr.responseText;
					}
					return 'ERROR: HTTP ' + xhr.status;
				} catch (e) {
					return 'ERROR: ' + e.toString();
				}
			})()
		`, accountJSONURL), &response),
	); err != nil {
		return nil, fmt.Errorf("fetching account data via XHR: %w", err)
	}

	if strings.HasPrefix(response, "ERROR:") {
		return nil, &InvalidDataError{Message: "account data fetch failed: " + response}
	}

	return parseAccountJSON(response)
}

// parseAccountJSON decodes the portal's account payload.
func parseAccountJSON(data string) (*models.Account, error) {
	var payload struct {
		AccountID     string                 `json:"accountId"`
		FirstName     string                 `json:"firstName"`
		LastName      string                 `json:"lastName"`
		AccountStatus string                 `json:"accountStatus"`
		Address       map[string]interface{} `json:"address"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, &InvalidDataError{Message: "parsing account data", Cause: err}
	}
	if payload.AccountID == "" {
		return nil, &InvalidDataError{Message: "account data missing accountId"}
	}

	return &models.Account{
		AccountID: payload.AccountID,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Status:    payload.AccountStatus,
		Address:   payload.Address,
	}, nil
}

// Invalidate forces re-authentication on the next Authenticate call. The
// browser process is reused.
func (s *ChromeSession) Invalidate() {
	s.authenticated = false
}

// Close terminates the browser process. Safe to call multiple times and on
// a session that never launched a browser.
func (s *ChromeSession) Close() error {
	if s.browserCancel != nil {
		s.browserCancel()
		s.browserCancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
	s.browserCtx = nil
	s.authenticated = false
	return nil
}
