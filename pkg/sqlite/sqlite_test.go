package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	dbRW, dbRO, cleanup := OpenTestDB(t)
	defer cleanup()

	_, err := dbRW.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY, v REAL)")
	require.NoError(t, err)

	_, err = dbRW.Exec("INSERT INTO t (v) VALUES (1.5)")
	require.NoError(t, err)

	var v float64
	require.NoError(t, dbRO.QueryRow("SELECT v FROM t").Scan(&v))
	assert.Equal(t, 1.5, v)

	// read-only connection rejects writes
	_, err = dbRO.Exec("INSERT INTO t (v) VALUES (2.5)")
	assert.Error(t, err)
}

func TestReadDBSize(t *testing.T) {
	dbRW, dbRO, cleanup := OpenTestDB(t)
	defer cleanup()

	_, err := dbRW.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	size, err := ReadDBSize(context.Background(), dbRO)
	require.NoError(t, err)
	assert.Greater(t, size, uint64(0))
}
