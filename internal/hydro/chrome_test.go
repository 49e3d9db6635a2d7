package hydro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromeSession(t *testing.T) {
	t.Run("MissingCredentials", func(t *testing.T) {
		var paramErr *ParamError

		_, err := NewChromeSession("", "hunter2", false)
		require.ErrorAs(t, err, &paramErr)

		_, err = NewChromeSession("user@example.com", "", false)
		require.ErrorAs(t, err, &paramErr)

		_, err = NewChromeSession("", "", false)
		require.ErrorAs(t, err, &paramErr)
	})

	t.Run("Valid", func(t *testing.T) {
		session, err := NewChromeSession("user@example.com", "hunter2", false)
		require.NoError(t, err)
		assert.NotNil(t, session)
		// No browser is launched until the first authenticate
		assert.NoError(t, session.Close())
	})
}
