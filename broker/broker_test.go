package broker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Wrap("snapshot", "main", nil))

	base := errors.New("connection refused")
	err := Wrap("snapshot", "main", base)
	require.Error(t, err)
	assert.Equal(t, "snapshot [main]: connection refused", err.Error())
	assert.ErrorIs(t, err, base)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "snapshot", fe.Op)
	assert.Equal(t, "main", fe.Account)

	// already wrapped errors are not nested again
	assert.Same(t, err, Wrap("positions", "other", err))
}

func TestFetchErrorWithoutAccount(t *testing.T) {
	t.Parallel()

	err := &FetchError{Op: "latest trade", Err: ErrNoData}
	assert.Equal(t, "latest trade: no data", err.Error())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestConnectorFunc(t *testing.T) {
	t.Parallel()

	var got Credentials
	c := ConnectorFunc(func(creds Credentials) (Source, error) {
		got = creds
		return nil, ErrNoCredentials
	})

	_, err := c.Connect(Credentials{Name: "ira"})
	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.Equal(t, "ira", got.Name)
}
