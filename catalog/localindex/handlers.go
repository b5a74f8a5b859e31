package localindex

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/venicegeo/geojson-go/geojson"

	"github.com/greenwatch/ndvi-broker/catalog/localindex/db"
	"github.com/greenwatch/ndvi-broker/util"
)

// DiscoverHandler is a handler for /localindex/discover/sentinel
// @Title localIndexDiscoverHandler
// @Description discovers scenes from the local index
// @Accept  plain
// @Param   bbox            query   string  false        "The bounding box, as a GeoJSON Bounding box (x1,y1,x2,y2)"
// @Param   cloudCover      query   string  false        "The maximum cloud cover, as a percentage (0-100)"
// @Param   acquiredDate    query   string  false        "The minimum (earliest) acquired date, as RFC 3339"
// @Param   maxAcquiredDate query   string  false        "The maximum acquired date, as RFC 3339"
// @Param   baseline        query   string  false        "The required processing baseline, exact match"
// @Success 200 {object}  geojson.FeatureCollection
// @Failure 400 {object}  string
// @Router /localindex/discover/sentinel [get]
type DiscoverHandler struct {
	Context Context
}

// NewDiscoverHandler creates a new handler using a connection from the
// given provider
func NewDiscoverHandler(connectionProvider db.ConnectionProvider) (*DiscoverHandler, error) {
	database, err := connectionProvider(&util.BasicLogContext{})
	if err != nil {
		return nil, err
	}

	return &DiscoverHandler{Context: Context{DB: database}}, nil
}

// ServeHTTP implements the http.Handler interface for the DiscoverHandler type
func (h DiscoverHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Context.DB.Begin()
	if err != nil {
		message := fmt.Sprintf("Could not begin DB transaction: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	defer tx.Commit()

	options := db.SearchOptions{Baseline: r.FormValue("baseline")}

	options.Bbox, err = geojson.NewBoundingBox(r.FormValue("bbox"))
	if err != nil {
		message := fmt.Sprintf("The bbox value of %v is invalid", r.FormValue("bbox"))
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
		tx.Rollback()
		return
	}
	options.MaxCloudCover = float64(100)
	if r.FormValue("cloudCover") != "" {
		if options.MaxCloudCover, err = strconv.ParseFloat(r.FormValue("cloudCover"), 64); err != nil {
			message := fmt.Sprintf("Cloud Cover value of %v is invalid.", r.FormValue("cloudCover"))
			util.LogSimpleErr(&h.Context, message, err)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			tx.Rollback()
			return
		}
	}
	options.MinAcquiredDate = time.Unix(0, 0)
	if r.FormValue("acquiredDate") != "" {
		if options.MinAcquiredDate, err = time.Parse(time.RFC3339, r.FormValue("acquiredDate")); err != nil {
			message := fmt.Sprintf("Acquired date value of %v is invalid.", r.FormValue("acquiredDate"))
			util.LogSimpleErr(&h.Context, message, err)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			tx.Rollback()
			return
		}
	}
	options.MaxAcquiredDate = time.Now()
	if r.FormValue("maxAcquiredDate") != "" {
		if options.MaxAcquiredDate, err = time.Parse(time.RFC3339, r.FormValue("maxAcquiredDate")); err != nil {
			message := fmt.Sprintf("Acquired date value of %v is invalid.", r.FormValue("maxAcquiredDate"))
			util.LogSimpleErr(&h.Context, message, err)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			tx.Rollback()
			return
		}
	}

	multiResult, err := discoverScenes(tx, options)
	if err != nil {
		message := fmt.Sprintf("Error searching for scenes: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		tx.Rollback()
		return
	}

	featureCollection, err := multiResult.GeoJSONFeatureCollection()
	if err != nil {
		message := fmt.Sprintf("Error converting to feature collection: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	w.Write([]byte(featureCollection.String()))
}

// MetadataHandler is a handler for /localindex/sentinel/{id}
// @Title localIndexMetadataHandler
// @Description returns the metadata for a single indexed scene
// @Accept  plain
// @Param   id            path   string  false        "The ID of the requested scene"
// @Success 200 {object}  geojson.Feature
// @Failure 400 {object}  string
// @Router /localindex/sentinel/{id} [get]
type MetadataHandler struct {
	Context Context
}

// NewMetadataHandler creates a new handler using a connection from the
// given provider
func NewMetadataHandler(connectionProvider db.ConnectionProvider) (*MetadataHandler, error) {
	database, err := connectionProvider(&util.BasicLogContext{})
	if err != nil {
		return nil, err
	}

	return &MetadataHandler{Context: Context{DB: database}}, nil
}

func (h MetadataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sceneID, ok := mux.Vars(r)["id"]
	if !ok {
		message := "No scene ID found in URL"
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		return
	}

	tx, err := h.Context.DB.Begin()
	if err != nil {
		message := fmt.Sprintf("Could not begin DB transaction: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	defer tx.Commit()

	metadata, err := getMetadata(tx, sceneID)
	if err == sql.ErrNoRows {
		message := fmt.Sprintf("Scene not found: %s", sceneID)
		util.LogInfo(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		tx.Rollback()
		return
	}
	if err != nil {
		message := fmt.Sprintf("Server error searching for scene: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		tx.Rollback()
		return
	}

	feature, err := metadata.GeoJSONFeature()
	if err != nil {
		message := fmt.Sprintf("Error converting metadata to geojson: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		tx.Rollback()
		return
	}
	w.Write([]byte(feature.String()))
}
