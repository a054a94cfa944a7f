package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInStore_Record_New(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO check_ins`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_id", "day", "checked_in_at"}).
			AddRow(int64(1), int64(42), 6, ts))

	s := NewCheckInStore(db)
	c, created, err := s.Record(context.Background(), 42, 6)
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, 6, c.Day)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckInStore_Record_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Now().UTC()
	// ON CONFLICT DO NOTHING yields no rows, then the existing row is fetched.
	mock.ExpectQuery(`INSERT INTO check_ins`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_id", "day", "checked_in_at"}))
	mock.ExpectQuery(`SELECT .+ FROM check_ins`).
		WithArgs(int64(42), 3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_id", "day", "checked_in_at"}).
			AddRow(int64(9), int64(42), 3, ts))

	s := NewCheckInStore(db)
	c, created, err := s.Record(context.Background(), 42, 3)
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, int64(9), c.ID)
}

func TestCheckInStore_Record_InvalidDay(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewCheckInStore(db)
	_, _, err = s.Record(context.Background(), 42, 7)
	assert.Error(t, err)

	_, _, err = s.Record(context.Background(), 42, 0)
	assert.Error(t, err)
}
