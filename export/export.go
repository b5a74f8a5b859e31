// Package export writes NDVI composites to georeferenced TIFF files
// and optionally mirrors them to an S3-compatible object store.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/greenwatch/ndvi-broker/raster"
	"github.com/greenwatch/ndvi-broker/util"
)

// NDVIEncoding maps the [-1, 1] index range onto uint16 with a fixed
// 1e-4 step, so re-exports of the same composite are byte-identical
var NDVIEncoding = raster.Encoding{Scale: 1e-4, Offset: -1, NoData: 65535}

// ExportError reports a failure to write or mirror an output file
type ExportError struct {
	Path  string
	Cause error
}

func (e ExportError) Error() string {
	return fmt.Sprintf("export of %v failed: %v", e.Path, e.Cause)
}

func (e ExportError) Unwrap() error {
	return e.Cause
}

// Uploader mirrors a written file to remote storage
type Uploader interface {
	Upload(ctx context.Context, localPath string, objectName string) error
}

// Exporter writes period composites under a single output directory.
// Uploader is optional; when set, every written file is mirrored.
type Exporter struct {
	OutputDir  string
	Uploader   Uploader
	LogContext util.LogContext
}

// WriteNDVI writes the grid as ndvi_<label>.tif plus its world file
// and returns the TIFF path. Upload failures are surfaced, not
// retried; the local file is kept either way.
func (e *Exporter) WriteNDVI(ctx context.Context, label string, ndvi *raster.Grid) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", ExportError{Path: e.OutputDir, Cause: err}
	}

	path := filepath.Join(e.OutputDir, fmt.Sprintf("ndvi_%s.tif", label))
	if err := raster.WriteGridTIFF(ndvi, path, NDVIEncoding); err != nil {
		return "", ExportError{Path: path, Cause: err}
	}
	if e.LogContext != nil {
		util.LogInfo(e.LogContext, fmt.Sprintf("Wrote %v", path))
	}

	if e.Uploader != nil {
		for _, localPath := range []string{path, raster.WorldFilePath(path)} {
			if err := e.Uploader.Upload(ctx, localPath, filepath.Base(localPath)); err != nil {
				return path, ExportError{Path: localPath, Cause: err}
			}
		}
	}

	return path, nil
}
