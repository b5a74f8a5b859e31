package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortScenes_CloudCoverAscending(t *testing.T) {
	scenes := []Scene{
		{ID: "b", CloudCover: 40},
		{ID: "c", CloudCover: 60},
		{ID: "a", CloudCover: 5},
	}

	SortScenes(scenes)

	assert.Equal(t, "a", scenes[0].ID)
	assert.Equal(t, "b", scenes[1].ID)
	assert.Equal(t, "c", scenes[2].ID)
}

func TestSortScenes_TieBreakByRecency(t *testing.T) {
	older := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	scenes := []Scene{
		{ID: "old", CloudCover: 10, AcquiredDate: older},
		{ID: "new", CloudCover: 10, AcquiredDate: newer},
	}

	SortScenes(scenes)

	assert.Equal(t, "new", scenes[0].ID)
	assert.Equal(t, "old", scenes[1].ID)
}

func TestQueryError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := QueryError{Provider: "earthapi", Cause: cause}

	assert.Contains(t, err.Error(), "earthapi")
	assert.True(t, errors.Is(err, cause))
}
