package model

import (
	"fmt"
	"time"
)

// STAC catalogs are not consistent about datetime formatting: some
// emit RFC 3339, some drop the offset, some drop fractional seconds.
// Parsing is therefore lenient across the layouts seen in the wild.

// StandardTimeLayout is the preferred format when emitting datetimes
const StandardTimeLayout = "2006-01-02T15:04:05.999999999Z"

var sceneTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
}

// ParseSceneTime is a drop-in replacement for time.Parse matching
// against the datetime layouts catalog providers actually emit
func ParseSceneTime(sceneTime string) (time.Time, error) {
	for _, layout := range sceneTimeLayouts {
		if output, err := time.Parse(layout, sceneTime); err == nil {
			return output, nil
		}
	}
	return time.Time{}, fmt.Errorf("Date could not be parsed by any expected time format: `%s`", sceneTime)
}
