package composite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "2020", Period{Year: 2020}.Label())
	assert.Equal(t, "2020_S1", Period{Year: 2020, Half: 1}.Label())
	assert.Equal(t, "2023_S2", Period{Year: 2023, Half: 2}.Label())
}

func TestPeriodRange(t *testing.T) {
	start, end := Period{Year: 2020, Half: 1}.Range()
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2020, 6, 30, 23, 59, 59, 0, time.UTC), end)

	start, end = Period{Year: 2020, Half: 2}.Range()
	assert.Equal(t, time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2020, 12, 31, 23, 59, 59, 0, time.UTC), end)

	start, end = Period{Year: 2020}.Range()
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2020, 12, 31, 23, 59, 59, 0, time.UTC), end)
}

func TestPeriodExpanded(t *testing.T) {
	start, end := Period{Year: 2020, Half: 1}.Expanded(45)

	assert.Equal(t, time.Date(2019, 11, 17, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2020, 8, 14, 23, 59, 59, 0, time.UTC), end)
}

func TestPeriods(t *testing.T) {
	annual := Periods(2018, 2020, false)
	assert.Len(t, annual, 3)
	assert.Equal(t, Period{Year: 2018}, annual[0])
	assert.Equal(t, Period{Year: 2020}, annual[2])

	semesters := Periods(2018, 2019, true)
	assert.Len(t, semesters, 4)
	assert.Equal(t, Period{Year: 2018, Half: 1}, semesters[0])
	assert.Equal(t, Period{Year: 2018, Half: 2}, semesters[1])
	assert.Equal(t, Period{Year: 2019, Half: 2}, semesters[3])
}
