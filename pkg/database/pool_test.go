package database

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryBackoff_WithinJitterBounds(t *testing.T) {
	for attempt := 0; attempt < 3; attempt++ {
		base := defaultRetryBaseWait << attempt
		lo := time.Duration(float64(base) * (1 - retryJitterFraction))
		hi := time.Duration(float64(base) * (1 + retryJitterFraction))

		for i := 0; i < 20; i++ {
			d := retryBackoff(attempt)
			assert.GreaterOrEqual(t, d, lo)
			assert.LessOrEqual(t, d, hi)
		}
	}
}

func TestRetryBackoff_NegativeAttempt(t *testing.T) {
	d := retryBackoff(-3)
	assert.LessOrEqual(t, d, time.Duration(float64(defaultRetryBaseWait)*(1+retryJitterFraction)))
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"dial tcp 127.0.0.1:5432: connect: connection refused", true},
		{"read: connection reset by peer", true},
		{"write: broken pipe", true},
		{"i/o timeout", true},
		{"unexpected EOF", true},
		{"could not connect to server", true},
		{`ERROR: syntax error at or near "CREAT"`, false},
		{"duplicate key value violates unique constraint", false},
		{`relation "interns" does not exist`, false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isConnectionError(errors.New(tt.msg)))
		})
	}
	assert.False(t, isConnectionError(nil))
}

func TestPostgresConfig_DSN_EscapesCredentials(t *testing.T) {
	cfg := DefaultPostgresConfig()
	cfg.User = "ltg"
	cfg.Password = "p@ss:w/rd"

	dsn := cfg.DSN()

	assert.True(t, strings.HasPrefix(dsn, "postgres://ltg:"))
	assert.Contains(t, dsn, "@localhost:5432/ltg_interns?sslmode=disable")
	assert.NotContains(t, dsn, "p@ss:w/rd")
}

func TestPostgresConfig_PoolConfig_AppliesTimeouts(t *testing.T) {
	cfg := DefaultPostgresConfig()
	cfg.StatementTimeout = 2500 * time.Millisecond
	cfg.ConnectTimeout = 3 * time.Second

	pc, err := cfg.poolConfig()
	require.NoError(t, err)

	assert.Equal(t, int32(10), pc.MaxConns)
	assert.Equal(t, 3*time.Second, pc.ConnConfig.ConnectTimeout)
	assert.Equal(t, "2500", pc.ConnConfig.RuntimeParams["statement_timeout"])
}

func TestPostgresConfig_PoolConfig_NoStatementTimeout(t *testing.T) {
	cfg := DefaultPostgresConfig()
	cfg.StatementTimeout = 0

	pc, err := cfg.poolConfig()
	require.NoError(t, err)

	_, set := pc.ConnConfig.RuntimeParams["statement_timeout"]
	assert.False(t, set)
}
