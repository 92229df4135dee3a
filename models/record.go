package models

import (
	"fmt"
	"time"
)

// Record is one measurement taken by a sensor. Records are append-only:
// once written they are never updated or deleted.
type Record struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Value      float64   `gorm:"not null" json:"value"`
	Error      float64   `gorm:"not null" json:"error"`
	SensorID   uint      `gorm:"index;not null" json:"sensor_id"`
	Sensor     *Sensor   `gorm:"-" json:"-"`
	RecordedAt time.Time `gorm:"autoCreateTime;index" json:"recorded_at"`
}

// TableName returns the production measurement table. The repository
// overrides this with the configured table in development mode.
func (Record) TableName() string {
	return "records"
}

// NewRecord builds a validated Record for the given sensor
func NewRecord(value, uncertainty float64, sensor *Sensor, id uint, recordedAt time.Time) (*Record, error) {
	if sensor == nil {
		return nil, fmt.Errorf("%w: records must belong to a valid sensor", ErrValidation)
	}
	return &Record{
		ID:         id,
		Value:      value,
		Error:      uncertainty,
		SensorID:   sensor.ID,
		Sensor:     sensor,
		RecordedAt: recordedAt,
	}, nil
}
