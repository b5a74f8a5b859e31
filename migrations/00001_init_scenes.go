package migration

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(Up00001, Down00001)
}

//Up00001 creates the scene index table.
//The footprint is stored as a plain lon/lat rectangle so the index
//works without spatial extensions.
func Up00001(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE public.scenes
	(
		product_id text COLLATE pg_catalog."default" NOT NULL,
		acquired_date timestamp without time zone NOT NULL,
		cloud_cover real NOT NULL,
		processing_baseline text COLLATE pg_catalog."default" NOT NULL DEFAULT '',
		scene_url text COLLATE pg_catalog."default" NOT NULL,
		min_lon double precision NOT NULL,
		min_lat double precision NOT NULL,
		max_lon double precision NOT NULL,
		max_lat double precision NOT NULL,
		CONSTRAINT "scenes_pk_productId" PRIMARY KEY (product_id)
	)
	WITH (
		OIDS = FALSE
	);
	`)
	return err
}

//Down00001 undoes the db changes.
func Down00001(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS public.scenes;`)
	return err
}
