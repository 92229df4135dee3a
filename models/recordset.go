package models

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used for CSV export and plot labels
const TimeLayout = "2006-01-02 15:04:05"

// RecordSet is an immutable snapshot of ordered measurements from one sensor.
// Times, Values and Errors are parallel slices in timestamp order.
type RecordSet struct {
	Sensor *Sensor
	Times  []time.Time
	Values []float64
	Errors []float64
	N      int
}

// NewRecordSet builds a record set from a non-empty ordered slice of records.
// All records are assumed to share the sensor of the first one.
func NewRecordSet(records []*Record) (*RecordSet, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: record set requires at least one record", ErrValidation)
	}
	if records[0].Sensor == nil {
		return nil, fmt.Errorf("%w: record set requires a valid sensor", ErrValidation)
	}

	rs := &RecordSet{
		Sensor: records[0].Sensor,
		Times:  make([]time.Time, len(records)),
		Values: make([]float64, len(records)),
		Errors: make([]float64, len(records)),
		N:      len(records),
	}
	for i, r := range records {
		rs.Times[i] = r.RecordedAt
		rs.Values[i] = r.Value
		rs.Errors[i] = r.Error
	}
	return rs, nil
}

// Mean returns the arithmetic mean of the measured values
func (rs *RecordSet) Mean() float64 {
	var sum float64
	for _, v := range rs.Values {
		sum += v
	}
	return sum / float64(rs.N)
}

// Variance returns the population variance of the measured values
func (rs *RecordSet) Variance() float64 {
	mean := rs.Mean()
	var sum float64
	for _, v := range rs.Values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(rs.N)
}

// StandardDeviation returns the sample standard deviation, derived from the
// population variance as sqrt(Variance * N/(N-1)). A single-record set has
// no defined sample deviation and returns an error instead of a NaN or Inf.
func (rs *RecordSet) StandardDeviation() (float64, error) {
	if rs.N < 2 {
		return 0, fmt.Errorf("standard deviation requires at least two records, got %d", rs.N)
	}
	return math.Sqrt(rs.Variance() * float64(rs.N) / float64(rs.N-1)), nil
}

// UnitsLabel returns the axis label for the measured quantity,
// e.g. "Temperature (K)"
func (rs *RecordSet) UnitsLabel() string {
	units := rs.Sensor.Units
	return units.Description + " (" + units.Short + ")"
}

// PlotLabel returns a formatted plot title embedding the sensor nomenclature
// and the observed time span
func (rs *RecordSet) PlotLabel() string {
	minTime, maxTime := rs.Times[0], rs.Times[0]
	for _, t := range rs.Times[1:] {
		if t.Before(minTime) {
			minTime = t
		}
		if t.After(maxTime) {
			maxTime = t
		}
	}
	return rs.Sensor.Units.Description + " Measured by " + rs.Sensor.Nomenclature() +
		"\nfrom " + minTime.Format(TimeLayout) + " until " + maxTime.Format(TimeLayout) + "\n"
}

// WriteCSV writes one delimited row per measurement in timestamp order,
// optionally preceded by a "DTG,<units label>,Error" header row. Values are
// written verbatim; no quoting or delimiter escaping is performed.
func (rs *RecordSet) WriteCSV(path, delim string, header bool) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if header {
		fmt.Fprintln(w, strings.Join([]string{"DTG", rs.UnitsLabel(), "Error"}, delim))
	}
	for i := range rs.Times {
		row := []string{
			rs.Times[i].Format(TimeLayout),
			strconv.FormatFloat(rs.Values[i], 'g', -1, 64),
			strconv.FormatFloat(rs.Errors[i], 'g', -1, 64),
		}
		fmt.Fprintln(w, strings.Join(row, delim))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write csv file: %w", err)
	}
	return nil
}
