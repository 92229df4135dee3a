package models_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"slowctl/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRecordSet(t *testing.T, values []float64) *models.RecordSet {
	t.Helper()
	_, _, _, _, sensor := buildChain(t)

	base := time.Date(2017, 7, 31, 12, 0, 0, 0, time.UTC)
	records := make([]*models.Record, 0, len(values))
	for i, v := range values {
		record, err := models.NewRecord(v, 0.1, sensor, uint(i+1), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		records = append(records, record)
	}

	set, err := models.NewRecordSet(records)
	require.NoError(t, err)
	return set
}

func TestRecordSetStatistics(t *testing.T) {
	set := buildRecordSet(t, []float64{10, 20, 30})

	assert.Equal(t, 3, set.N)
	assert.InDelta(t, 20.0, set.Mean(), 1e-12)
	assert.InDelta(t, 200.0/3.0, set.Variance(), 1e-12)

	// Sample standard deviation derived from the population variance:
	// sqrt(Variance * N/(N-1))
	sd, err := set.StandardDeviation()
	require.NoError(t, err)
	assert.InDelta(t, 10.0, sd, 1e-12)
}

func TestRecordSetEmptyRejected(t *testing.T) {
	_, err := models.NewRecordSet(nil)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = models.NewRecordSet([]*models.Record{})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestRecordSetSingleRecord(t *testing.T) {
	// A single record is a valid set, but its sample standard deviation is
	// undefined and must fail instead of returning Inf or NaN
	set := buildRecordSet(t, []float64{42})

	assert.Equal(t, 1, set.N)
	assert.Equal(t, 42.0, set.Mean())
	assert.Equal(t, 0.0, set.Variance())

	sd, err := set.StandardDeviation()
	assert.Error(t, err)
	assert.False(t, math.IsInf(sd, 0))
	assert.False(t, math.IsNaN(sd))
}

func TestRecordSetLabels(t *testing.T) {
	set := buildRecordSet(t, []float64{10, 20})

	assert.Equal(t, "Temperature (K)", set.UnitsLabel())

	label := set.PlotLabel()
	assert.Contains(t, label, "Temperature Measured by spinlab.he3.polarizer.laser.temp")
	assert.Contains(t, label, "from 2017-07-31 12:00:00 until 2017-07-31 12:01:00")
}

func TestWriteCSV(t *testing.T) {
	_, _, _, _, sensor := buildChain(t)

	t1 := time.Date(2017, 7, 31, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2017, 7, 31, 12, 5, 0, 0, time.UTC)
	r1, err := models.NewRecord(1.5, 0.1, sensor, 1, t1)
	require.NoError(t, err)
	r2, err := models.NewRecord(2.5, 0.2, sensor, 2, t2)
	require.NoError(t, err)

	set, err := models.NewRecordSet([]*models.Record{r1, r2})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, set.WriteCSV(path, ",", true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := "DTG,Temperature (K),Error\n" +
		"2017-07-31 12:00:00,1.5,0.1\n" +
		"2017-07-31 12:05:00,2.5,0.2\n"
	assert.Equal(t, want, string(data))
}

func TestWriteCSVNoHeaderCustomDelimiter(t *testing.T) {
	set := buildRecordSet(t, []float64{10})

	path := filepath.Join(t.TempDir(), "export.tsv")
	require.NoError(t, set.WriteCSV(path, "\t", false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2017-07-31 12:00:00\t10\t0.1\n", string(data))
}
