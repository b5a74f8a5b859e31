package migration

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(Up00002, Down00002)
}

// Up00002 adds the indexes backing the discover query: cloud cover
// ordering and the footprint overlap test
func Up00002(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE INDEX idx_scenes_cloud_cover
	ON public.scenes (cloud_cover ASC, acquired_date DESC);

	CREATE INDEX idx_scenes_footprint
	ON public.scenes (min_lon, max_lon, min_lat, max_lat);
	`)
	return err
}

// Down00002 undoes the effects of Up00002
func Down00002(tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP INDEX IF EXISTS idx_scenes_cloud_cover;
	DROP INDEX IF EXISTS idx_scenes_footprint;
	`)
	return err
}
