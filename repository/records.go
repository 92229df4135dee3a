package repository

import (
	"fmt"
	"time"

	"slowctl/conditions"
	"slowctl/models"
)

// RecordMeasurement appends one measurement for the given sensor and returns
// the stored record with its assigned id and timestamp. Records are never
// updated once written.
func (r *Repository) RecordMeasurement(sensor *models.Sensor, value, uncertainty float64) (*models.Record, error) {
	if sensor == nil {
		return nil, fmt.Errorf("%w: a sensor is required to record a measurement", ErrMissingRelation)
	}

	row := models.Record{Value: value, Error: uncertainty, SensorID: sensor.ID}
	if err := r.records().Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	// Re-read the assigned id and timestamp
	var saved models.Record
	clause, args := conditions.EQ(row.ID).Clause("id")
	if err := r.records().Where(clause, args...).Take(&saved).Error; err != nil {
		return nil, fmt.Errorf("failed to re-read record %d after insert: %w", row.ID, err)
	}
	return models.NewRecord(saved.Value, saved.Error, sensor, saved.ID, saved.RecordedAt)
}

// GetRecords selects all measurements of one sensor with timestamp in the
// inclusive range [start, end], ascending by timestamp. No qualifying rows
// is a normal empty result: both return values are nil. An inverted range
// (start after end) is passed to the store verbatim and yields no rows.
func (r *Repository) GetRecords(sensor *models.Sensor, start, end time.Time) (*models.RecordSet, error) {
	if sensor == nil {
		return nil, fmt.Errorf("%w: a sensor is required to query records", ErrMissingRelation)
	}

	senClause, senArgs := conditions.EQ(sensor.ID).Clause("sensor_id")
	rangeClause, rangeArgs := conditions.InRange(start, end).Clause("recorded_at")

	var rows []models.Record
	err := r.records().
		Where(senClause, senArgs...).
		Where(rangeClause, rangeArgs...).
		Order("recorded_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]*models.Record, 0, len(rows))
	for _, row := range rows {
		record, err := models.NewRecord(row.Value, row.Error, sensor, row.ID, row.RecordedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return models.NewRecordSet(records)
}

// GetMostRecentRecord returns the single latest measurement of one sensor
// by timestamp, or nil when the sensor has no records yet
func (r *Repository) GetMostRecentRecord(sensor *models.Sensor) (*models.Record, error) {
	if sensor == nil {
		return nil, fmt.Errorf("%w: a sensor is required to query records", ErrMissingRelation)
	}

	senClause, senArgs := conditions.EQ(sensor.ID).Clause("sensor_id")

	var rows []models.Record
	err := r.records().
		Where(senClause, senArgs...).
		Order("recorded_at DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return models.NewRecord(rows[0].Value, rows[0].Error, sensor, rows[0].ID, rows[0].RecordedAt)
}
