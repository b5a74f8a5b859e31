package db

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/venicegeo/geojson-go/geojson"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var sceneColumns = []string{
	"product_id", "acquired_date", "cloud_cover", "processing_baseline",
	"scene_url", "min_lon", "min_lat", "max_lon", "max_lat",
}

// SearchOptions narrows a scene index search. Zero values leave the
// corresponding dimension unconstrained.
type SearchOptions struct {
	Bbox            geojson.BoundingBox
	MaxCloudCover   float64
	MinAcquiredDate time.Time
	MaxAcquiredDate time.Time
	Baseline        string
}

func searchScenesQuery(options SearchOptions) squirrel.SelectBuilder {
	query := psql.Select(sceneColumns...).
		From("public.scenes").
		OrderBy("cloud_cover ASC", "acquired_date DESC")

	if len(options.Bbox) >= 4 {
		// Overlap test between the stored rectangle and the search box
		query = query.
			Where(squirrel.LtOrEq{"min_lon": options.Bbox[2]}).
			Where(squirrel.GtOrEq{"max_lon": options.Bbox[0]}).
			Where(squirrel.LtOrEq{"min_lat": options.Bbox[3]}).
			Where(squirrel.GtOrEq{"max_lat": options.Bbox[1]})
	}
	if options.MaxCloudCover > 0 {
		query = query.Where(squirrel.LtOrEq{"cloud_cover": options.MaxCloudCover})
	}
	if !options.MinAcquiredDate.IsZero() {
		query = query.Where(squirrel.GtOrEq{"acquired_date": options.MinAcquiredDate})
	}
	if !options.MaxAcquiredDate.IsZero() {
		query = query.Where(squirrel.LtOrEq{"acquired_date": options.MaxAcquiredDate})
	}
	if options.Baseline != "" {
		query = query.Where(squirrel.Eq{"processing_baseline": options.Baseline})
	}

	return query
}

// SearchScenes returns the indexed scenes matching the given options,
// ordered by ascending cloud cover then descending acquisition date.
// No matches is an empty slice, not an error.
func SearchScenes(tx *sql.Tx, options SearchOptions) ([]IndexedScene, error) {
	sqlString, args, err := searchScenesQuery(options).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(sqlString, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scenes := []IndexedScene{}
	for rows.Next() {
		scene := IndexedScene{}
		err = rows.Scan(&scene.ProductID, &scene.AcquiredDate, &scene.CloudCover, &scene.Baseline,
			&scene.SceneURLString, &scene.MinLon, &scene.MinLat, &scene.MaxLon, &scene.MaxLat)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, scene)
	}

	return scenes, rows.Err()
}

// GetSceneByID looks up a single scene; sql.ErrNoRows when absent
func GetSceneByID(tx *sql.Tx, productID string) (*IndexedScene, error) {
	sqlString, args, err := psql.Select(sceneColumns...).
		From("public.scenes").
		Where(squirrel.Eq{"product_id": productID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(sqlString, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}

	scene := IndexedScene{}
	err = rows.Scan(&scene.ProductID, &scene.AcquiredDate, &scene.CloudCover, &scene.Baseline,
		&scene.SceneURLString, &scene.MinLon, &scene.MinLat, &scene.MaxLon, &scene.MaxLat)
	if err != nil {
		return nil, err
	}

	return &scene, nil
}

// UpsertScene inserts a scene row, replacing any existing row with the
// same product ID
func UpsertScene(tx *sql.Tx, scene IndexedScene) error {
	sqlString, args, err := psql.Insert("public.scenes").
		Columns(sceneColumns...).
		Values(scene.ProductID, scene.AcquiredDate, scene.CloudCover, scene.Baseline,
			scene.SceneURLString, scene.MinLon, scene.MinLat, scene.MaxLon, scene.MaxLat).
		Suffix(`ON CONFLICT (product_id) DO UPDATE SET
			acquired_date = EXCLUDED.acquired_date,
			cloud_cover = EXCLUDED.cloud_cover,
			processing_baseline = EXCLUDED.processing_baseline,
			scene_url = EXCLUDED.scene_url,
			min_lon = EXCLUDED.min_lon,
			min_lat = EXCLUDED.min_lat,
			max_lon = EXCLUDED.max_lon,
			max_lat = EXCLUDED.max_lat`).
		ToSql()
	if err != nil {
		return err
	}

	_, err = tx.Exec(sqlString, args...)
	return err
}
