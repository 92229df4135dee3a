package repository

import (
	"fmt"
	"time"

	"slowctl/conditions"
	"slowctl/models"
)

// CreateManufacturer adds a new manufacturer to the side table
func (r *Repository) CreateManufacturer(name, description, url string) (*models.Manufacturer, error) {
	mfg, err := models.NewManufacturer(name, description, url, 0, time.Time{})
	if err != nil {
		return nil, err
	}

	existing, err := r.GetManufacturer(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: manufacturer %q", ErrDuplicate, name)
	}

	row := models.Manufacturer{Name: name, Description: description, URL: url}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to insert manufacturer: %w", err)
	}
	saved, err := r.GetManufacturerByID(row.ID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("failed to re-read manufacturer %d after insert", row.ID)
	}
	mfg.ID = saved.ID
	mfg.CreatedAt = saved.CreatedAt
	return mfg, nil
}

// GetManufacturer looks up a manufacturer by its unique name. A missing
// manufacturer is a normal empty result: both return values are nil.
func (r *Repository) GetManufacturer(name string) (*models.Manufacturer, error) {
	return r.findManufacturer(conditions.EQ(name).Clause("name"))
}

// GetManufacturerByID looks up a manufacturer by database id
func (r *Repository) GetManufacturerByID(id uint) (*models.Manufacturer, error) {
	return r.findManufacturer(conditions.EQ(id).Clause("id"))
}

func (r *Repository) findManufacturer(clause string, args []interface{}) (*models.Manufacturer, error) {
	var row models.Manufacturer
	if err := r.db.Where(clause, args...).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query manufacturers: %w", err)
	}
	return models.NewManufacturer(row.Name, row.Description, row.URL, row.ID, row.CreatedAt)
}

// ListManufacturers returns all manufacturers
func (r *Repository) ListManufacturers() ([]*models.Manufacturer, error) {
	var rows []models.Manufacturer
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list manufacturers: %w", err)
	}
	mfgs := make([]*models.Manufacturer, 0, len(rows))
	for _, row := range rows {
		mfg, err := models.NewManufacturer(row.Name, row.Description, row.URL, row.ID, row.CreatedAt)
		if err != nil {
			return nil, err
		}
		mfgs = append(mfgs, mfg)
	}
	return mfgs, nil
}

// CreateUnits adds a new unit of measure. The long form is the unique
// lookup key, e.g. "meters per second" for short form "m/s".
func (r *Repository) CreateUnits(short, long, description string) (*models.Units, error) {
	units, err := models.NewUnits(short, long, description, 0)
	if err != nil {
		return nil, err
	}

	existing, err := r.GetUnits(long)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: units %q", ErrDuplicate, long)
	}

	row := models.Units{Short: short, Long: long, Description: description}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to insert units: %w", err)
	}
	units.ID = row.ID
	return units, nil
}

// GetUnits looks up a unit of measure by its long form. A missing unit is a
// normal empty result: both return values are nil.
func (r *Repository) GetUnits(long string) (*models.Units, error) {
	return r.findUnits(conditions.EQ(long).Clause("long"))
}

// GetUnitsByID looks up a unit of measure by database id
func (r *Repository) GetUnitsByID(id uint) (*models.Units, error) {
	return r.findUnits(conditions.EQ(id).Clause("id"))
}

func (r *Repository) findUnits(clause string, args []interface{}) (*models.Units, error) {
	var row models.Units
	if err := r.db.Where(clause, args...).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	return models.NewUnits(row.Short, row.Long, row.Description, row.ID)
}

// ListUnits returns all units of measure
func (r *Repository) ListUnits() ([]*models.Units, error) {
	var rows []models.Units
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	units := make([]*models.Units, 0, len(rows))
	for _, row := range rows {
		u, err := models.NewUnits(row.Short, row.Long, row.Description, row.ID)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}
