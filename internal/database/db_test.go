package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/hydroscraper/pkg/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func reading(day int, kwh, cost float64) models.DailyElectricity {
	date := time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC)
	return models.DailyElectricity{
		Consumption: kwh,
		Cost:        cost,
		Interval:    models.Interval{Start: date, End: date},
	}
}

func TestInsertAndList(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.InsertDaily(reading(1, 10.5, 1.00)))
	require.NoError(t, db.InsertDaily(reading(2, 12.0, 1.20)))

	rows, err := db.ListDaily()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first
	assert.Equal(t, 12.0, rows[0].Reading.Consumption)
	assert.Equal(t, 10.5, rows[1].Reading.Consumption)
	assert.Equal(t, 1.00, rows[1].Reading.Cost)
	assert.False(t, rows[0].Published)
	assert.False(t, rows[0].Reading.IsEstimate)
}

func TestDuplicateDateIgnored(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.InsertDaily(reading(1, 10.5, 1.00)))
	// A later refresh re-offers the same day; the first stored value wins.
	require.NoError(t, db.InsertDaily(reading(1, 99.9, 9.99)))

	rows, err := db.ListDaily()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 10.5, rows[0].Reading.Consumption)
}

func TestHasDate(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.InsertDaily(reading(5, 8.0, 0.80)))

	has, err := db.HasDate(time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, has)

	has, err = db.HasDate(time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestPublishedFlow(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.InsertDaily(reading(1, 10.5, 1.00)))
	require.NoError(t, db.InsertDaily(reading(2, 12.0, 1.20)))

	unpublished, err := db.ListUnpublished()
	require.NoError(t, err)
	require.Len(t, unpublished, 2)
	// Oldest first so backfill arrives in order
	assert.Equal(t, 10.5, unpublished[0].Reading.Consumption)

	require.NoError(t, db.MarkPublished(unpublished[0].ID))

	unpublished, err = db.ListUnpublished()
	require.NoError(t, err)
	require.Len(t, unpublished, 1)
	assert.Equal(t, 12.0, unpublished[0].Reading.Consumption)
}
