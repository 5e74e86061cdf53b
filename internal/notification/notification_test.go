package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExec struct {
	sql  string
	args []any
	err  error
}

func (r *recordingExec) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql, r.args = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), r.err
}

func TestInsert(t *testing.T) {
	ex := &recordingExec{}
	require.NoError(t, Insert(context.Background(), ex, "u-1", "Order placed", "Your order was received"))
	assert.Contains(t, ex.sql, "INSERT INTO notifications")
	require.Len(t, ex.args, 4)
	assert.Equal(t, "u-1", ex.args[1])
	assert.Equal(t, "Order placed", ex.args[2])

	ex.err = errors.New("boom")
	err := Insert(context.Background(), ex, "u-1", "t", "m")
	assert.ErrorContains(t, err, "insert notification")
}
