package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/tourguide/internal/core/domain"
)

func attractionRows(mock pgxmock.PgxPoolIface) *pgxmock.Rows {
	return mock.NewRows([]string{"id", "name", "city", "state", "lat", "lon"}).
		AddRow("7c9e6679-7425-40de-944b-e07fc1f90ae7", "Disneyland", "Anaheim", "CA", 33.817595, -117.922008).
		AddRow("a1b2c3d4-0000-4000-8000-000000000001", "Jackson Hole", "Jackson Hole", "WY", 43.582767, -110.821999)
}

func TestAttractionRepo_All(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id::text, name, city, state, lat, lon FROM attractions ORDER BY name, id`).
		WillReturnRows(attractionRows(mock))

	repo := NewAttractionRepo(mock)
	got, err := repo.All(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Disneyland", got[0].Name)
	assert.Equal(t, "CA", got[0].State)
	assert.InDelta(t, -117.922008, got[0].Location.Lon, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttractionRepo_FindWithin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	b := domain.Bounds{MinLat: 30, MinLon: -120, MaxLat: 45, MaxLon: -100}
	mock.ExpectQuery(`SELECT (.+) FROM attractions WHERE \(lat >= \$1 AND lat <= \$2 AND lon >= \$3 AND lon <= \$4\)`).
		WithArgs(b.MinLat, b.MaxLat, b.MinLon, b.MaxLon).
		WillReturnRows(attractionRows(mock))

	repo := NewAttractionRepo(mock)
	got, err := repo.FindWithin(context.Background(), b)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttractionRepo_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT (.+) FROM attractions`).WillReturnError(boom)

	repo := NewAttractionRepo(mock)
	_, err = repo.All(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestMigrateURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/tourguide?sslmode=disable":   "pgx5://u:p@localhost:5432/tourguide?sslmode=disable",
		"postgresql://u:p@localhost:5432/tourguide?sslmode=disable": "pgx5://u:p@localhost:5432/tourguide?sslmode=disable",
		"pgx5://already": "pgx5://already",
	}
	for in, want := range cases {
		assert.Equal(t, want, migrateURL(in), in)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)

	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	assert.Positive(t, up)
	assert.Equal(t, up, down, "every up migration needs a down migration")
}
