package hydro

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/hydroscraper/pkg/models"
)

func TestClientRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("EndToEnd", func(t *testing.T) {
		session := &MockSession{Fragment: consumptionFragment}
		client := NewClient(session)

		require.NoError(t, client.Refresh(ctx))

		usage, ok := client.Snapshot()
		require.True(t, ok)
		require.Len(t, usage.Electricity, 2)

		latestUsage, err := client.LatestUsage(ctx)
		require.NoError(t, err)
		assert.Equal(t, 12.0, latestUsage)

		latestCost, err := client.LatestCost(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1.20, latestCost)

		interval, err := client.LatestInterval(ctx)
		require.NoError(t, err)
		assert.Equal(t, usage.Interval.End, interval.Start, "latest point is the last table row")
	})

	t.Run("RateOverrides", func(t *testing.T) {
		session := &MockSession{Fragment: consumptionFragment}
		client := NewClient(session)

		overridden := DefaultRates()
		overridden.Step1Rate = 0.1100
		overridden.Step2Rate = 0.1600
		client.SetRates(overridden)

		require.NoError(t, client.Refresh(ctx))
		usage, _ := client.Snapshot()
		assert.Equal(t, 0.1100, usage.Rates.Step1Rate, "configured rates replace the defaults")
		assert.Equal(t, 0.1600, usage.Rates.Step2Rate)
		assert.Equal(t, DefaultRates().Threshold, usage.Rates.Threshold)
	})

	t.Run("DefaultRatesStamped", func(t *testing.T) {
		session := &MockSession{Fragment: consumptionFragment}
		client := NewClient(session)

		require.NoError(t, client.Refresh(ctx))
		usage, _ := client.Snapshot()
		assert.Equal(t, DefaultRates(), usage.Rates)
	})

	t.Run("Idempotent", func(t *testing.T) {
		session := &MockSession{Fragment: consumptionFragment}
		client := NewClient(session)

		require.NoError(t, client.Refresh(ctx))
		first, _ := client.Snapshot()

		require.NoError(t, client.Refresh(ctx))
		second, _ := client.Snapshot()

		assert.Equal(t, first, second, "identical markup yields structurally equal snapshots")
	})

	t.Run("AuthFailureKeepsCache", func(t *testing.T) {
		session := &MockSession{Fragment: consumptionFragment}
		client := NewClient(session)
		require.NoError(t, client.Refresh(ctx))

		session.AuthErr = &AuthError{Message: "login failed: bad password"}
		err := client.Refresh(ctx)

		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)

		usage, ok := client.Snapshot()
		require.True(t, ok, "previous snapshot survives a failed refresh")
		assert.Len(t, usage.Electricity, 2)

		latestUsage, lerr := client.LatestUsage(ctx)
		require.NoError(t, lerr)
		assert.Equal(t, 12.0, latestUsage, "accessors keep serving the cached point")
	})

	t.Run("AlertPageKeepsCacheAndInvalidatesSession", func(t *testing.T) {
		session := &MockSession{Fragment: consumptionFragment}
		client := NewClient(session)
		require.NoError(t, client.Refresh(ctx))

		session.Fragment = `<div class="alert error">Service temporarily unavailable</div>`
		err := client.Refresh(ctx)

		var alertErr *AlertDialogError
		require.ErrorAs(t, err, &alertErr)
		assert.False(t, session.authenticated, "parser failure forces re-login on the next attempt")

		usage, ok := client.Snapshot()
		require.True(t, ok)
		assert.Len(t, usage.Electricity, 2)
	})

	t.Run("MissingTable", func(t *testing.T) {
		session := &MockSession{Fragment: `<div><p>nothing here</p></div>`}
		client := NewClient(session)

		err := client.Refresh(ctx)
		var htmlErr *InvalidHTMLError
		require.ErrorAs(t, err, &htmlErr)

		_, ok := client.Snapshot()
		assert.False(t, ok, "no snapshot is cached before the first success")
	})

	t.Run("AccountAttached", func(t *testing.T) {
		session := &MockSession{
			Fragment: consumptionFragment,
			Account: &models.Account{
				AccountID: "12345",
				FirstName: "Jane",
				LastName:  "Doe",
				Status:    "ACTIVE",
			},
		}
		client := NewClient(session)

		require.NoError(t, client.Refresh(ctx))
		usage, _ := client.Snapshot()
		require.NotNil(t, usage.Account)
		assert.Equal(t, "12345", usage.Account.AccountID)
	})

	t.Run("AccountFailureNonFatal", func(t *testing.T) {
		session := &MockSession{
			Fragment:   consumptionFragment,
			AccountErr: &InvalidDataError{Message: "account data missing accountId"},
		}
		client := NewClient(session)

		require.NoError(t, client.Refresh(ctx))
		usage, _ := client.Snapshot()
		assert.Nil(t, usage.Account)
	})
}

func TestClientLazyRefresh(t *testing.T) {
	ctx := context.Background()
	session := &MockSession{Fragment: consumptionFragment}
	client := NewClient(session)

	latestUsage, err := client.LatestUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12.0, latestUsage)
	assert.Equal(t, 1, session.FragmentCalls, "first accessor triggers one refresh")

	_, err = client.LatestCost(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, session.FragmentCalls, "cached point avoids further fetches")
}

func TestClientClose(t *testing.T) {
	session := &MockSession{Fragment: consumptionFragment}
	client := NewClient(session)

	require.NoError(t, client.Close())
	assert.True(t, session.Closed)
}

func TestParseAccountJSON(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		account, err := parseAccountJSON(`{
			"accountId": "9001",
			"firstName": "Jane",
			"lastName": "Doe",
			"accountStatus": "ACTIVE",
			"address": {"city": "Vancouver"}
		}`)
		require.NoError(t, err)
		assert.Equal(t, "9001", account.AccountID)
		assert.Equal(t, "ACTIVE", account.Status)
		assert.Equal(t, "Vancouver", account.Address["city"])
	})

	t.Run("MissingAccountID", func(t *testing.T) {
		_, err := parseAccountJSON(`{"firstName": "Jane"}`)
		var dataErr *InvalidDataError
		require.ErrorAs(t, err, &dataErr)
	})

	t.Run("NotJSON", func(t *testing.T) {
		_, err := parseAccountJSON(`<html>login page</html>`)
		var dataErr *InvalidDataError
		require.ErrorAs(t, err, &dataErr)
		assert.Error(t, dataErr.Unwrap())
	})
}
