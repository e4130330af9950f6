package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/tourguide/internal/core/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var attractionColumns = []string{"id::text", "name", "city", "state", "lat", "lon"}

// AttractionRepo implements ports.AttractionCatalog and ports.AttractionFinder
// with pgx.
type AttractionRepo struct {
	q Querier
}

// NewAttractionRepo creates a new AttractionRepo.
func NewAttractionRepo(q Querier) *AttractionRepo {
	return &AttractionRepo{q: q}
}

// All returns every attraction ordered by name.
func (r *AttractionRepo) All(ctx context.Context) ([]domain.Attraction, error) {
	query, args, err := psql.Select(attractionColumns...).
		From("attractions").
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return r.query(ctx, query, args...)
}

// FindWithin returns the attractions inside b, using the (lat, lon) index.
func (r *AttractionRepo) FindWithin(ctx context.Context, b domain.Bounds) ([]domain.Attraction, error) {
	query, args, err := psql.Select(attractionColumns...).
		From("attractions").
		Where(sq.And{
			sq.GtOrEq{"lat": b.MinLat},
			sq.LtOrEq{"lat": b.MaxLat},
			sq.GtOrEq{"lon": b.MinLon},
			sq.LtOrEq{"lon": b.MaxLon},
		}).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return r.query(ctx, query, args...)
}

func (r *AttractionRepo) query(ctx context.Context, sql string, args ...any) ([]domain.Attraction, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query attractions: %w", err)
	}
	defer rows.Close()

	var out []domain.Attraction
	for rows.Next() {
		var a domain.Attraction
		if err := rows.Scan(&a.ID, &a.Name, &a.City, &a.State, &a.Location.Lat, &a.Location.Lon); err != nil {
			return nil, fmt.Errorf("scan attraction: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertBatch inserts or updates attractions by id. Attractions without a
// valid UUID id get a name-derived one.
func (r *AttractionRepo) UpsertBatch(ctx context.Context, attractions []domain.Attraction) error {
	batch := &pgx.Batch{}
	for _, a := range attractions {
		id, err := uuid.Parse(a.ID)
		if err != nil {
			id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(a.Name))
		}
		batch.Queue(`
			INSERT INTO attractions (id, name, city, state, lat, lon)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, city = EXCLUDED.city, state = EXCLUDED.state,
			    lat = EXCLUDED.lat, lon = EXCLUDED.lon
		`, id, a.Name, a.City, a.State, a.Location.Lat, a.Location.Lon)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range attractions {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}
