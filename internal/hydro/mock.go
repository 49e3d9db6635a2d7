package hydro

import (
	"context"

	"github.com/jgoulah/hydroscraper/pkg/models"
)

// MockSession is a scriptable Session for tests and offline development.
// Set Fragment/Account to the canned responses and the *Err fields to force
// failures at each stage.
type MockSession struct {
	Fragment string
	Account  *models.Account

	AuthErr     error
	FragmentErr error
	AccountErr  error

	AuthCalls     int
	FragmentCalls int
	Closed        bool

	authenticated bool
}

func (m *MockSession) Authenticate(ctx context.Context) error {
	m.AuthCalls++
	if m.AuthErr != nil {
		m.authenticated = false
		return m.AuthErr
	}
	m.authenticated = true
	return nil
}

func (m *MockSession) FetchConsumptionFragment(ctx context.Context) (string, error) {
	m.FragmentCalls++
	if !m.authenticated {
		return "", &AuthError{Message: "not authenticated"}
	}
	if m.FragmentErr != nil {
		m.authenticated = false
		return "", m.FragmentErr
	}
	return m.Fragment, nil
}

func (m *MockSession) FetchAccount(ctx context.Context) (*models.Account, error) {
	if !m.authenticated {
		return nil, &AuthError{Message: "not authenticated"}
	}
	if m.AccountErr != nil {
		return nil, m.AccountErr
	}
	return m.Account, nil
}

func (m *MockSession) Invalidate() {
	m.authenticated = false
}

func (m *MockSession) Close() error {
	m.Closed = true
	m.authenticated = false
	return nil
}
