package models

import (
	"fmt"
	"time"
)

// Nomenclator is implemented by every entity addressable by a dotted
// nomenclature string such as "spinlab.he3.polarizer.laser.temp".
type Nomenclator interface {
	Nomenclature() string
}

// Owner represents the top level of the naming hierarchy
type Owner struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:12" json:"name"`
	Description string    `gorm:"not null;size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName customizes the table name
func (Owner) TableName() string {
	return "owners"
}

// NewOwner builds a validated Owner from already-fetched field values
func NewOwner(name, description string, id uint, createdAt time.Time) (*Owner, error) {
	if err := checkText("owner name", name, MaxNameLen); err != nil {
		return nil, err
	}
	if err := checkText("owner description", description, MaxTextLen); err != nil {
		return nil, err
	}
	return &Owner{ID: id, Name: name, Description: description, CreatedAt: createdAt}, nil
}

// Nomenclature returns the bare owner name; owners are hierarchy roots
func (o *Owner) Nomenclature() string {
	return o.Name
}

// Project groups systems under one owner
type Project struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex:idx_projects_owner_name;not null;size:12" json:"name"`
	Description string    `gorm:"not null;size:255" json:"description"`
	OwnerID     uint      `gorm:"uniqueIndex:idx_projects_owner_name;not null" json:"owner_id"`
	Owner       *Owner    `gorm:"-" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName customizes the table name
func (Project) TableName() string {
	return "projects"
}

// NewProject builds a validated Project belonging to the given owner
func NewProject(name, description string, owner *Owner, id uint, createdAt time.Time) (*Project, error) {
	if owner == nil {
		return nil, fmt.Errorf("%w: projects require a valid owner", ErrValidation)
	}
	if err := checkText("project name", name, MaxNameLen); err != nil {
		return nil, err
	}
	if err := checkText("project description", description, MaxTextLen); err != nil {
		return nil, err
	}
	return &Project{
		ID:          id,
		Name:        name,
		Description: description,
		OwnerID:     owner.ID,
		Owner:       owner,
		CreatedAt:   createdAt,
	}, nil
}

// Nomenclature prepends the owner nomenclature
func (p *Project) Nomenclature() string {
	if p.Owner != nil {
		return p.Owner.Nomenclature() + "." + p.Name
	}
	return p.Name
}

// System groups devices under one project
type System struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex:idx_systems_project_name;not null;size:12" json:"name"`
	Description string    `gorm:"not null;size:255" json:"description"`
	ProjectID   uint      `gorm:"uniqueIndex:idx_systems_project_name;not null" json:"project_id"`
	Project     *Project  `gorm:"-" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName customizes the table name
func (System) TableName() string {
	return "systems"
}

// NewSystem builds a validated System belonging to the given project
func NewSystem(name, description string, project *Project, id uint, createdAt time.Time) (*System, error) {
	if project == nil {
		return nil, fmt.Errorf("%w: systems require a valid project", ErrValidation)
	}
	if err := checkText("system name", name, MaxNameLen); err != nil {
		return nil, err
	}
	if err := checkText("system description", description, MaxTextLen); err != nil {
		return nil, err
	}
	return &System{
		ID:          id,
		Name:        name,
		Description: description,
		ProjectID:   project.ID,
		Project:     project,
		CreatedAt:   createdAt,
	}, nil
}

// Nomenclature prepends the project nomenclature
func (s *System) Nomenclature() string {
	if s.Project != nil {
		return s.Project.Nomenclature() + "." + s.Name
	}
	return s.Name
}

// Manufacturer is a side table of device makers, keyed by unique name
type Manufacturer struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:12" json:"name"`
	Description string    `gorm:"not null;size:255" json:"description"`
	URL         string    `gorm:"not null;size:255" json:"url"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName customizes the table name
func (Manufacturer) TableName() string {
	return "manufacturers"
}

// NewManufacturer builds a validated Manufacturer
func NewManufacturer(name, description, url string, id uint, createdAt time.Time) (*Manufacturer, error) {
	if err := checkText("manufacturer name", name, MaxNameLen); err != nil {
		return nil, err
	}
	if err := checkText("manufacturer description", description, MaxTextLen); err != nil {
		return nil, err
	}
	if err := checkText("manufacturer URL", url, MaxTextLen); err != nil {
		return nil, err
	}
	return &Manufacturer{ID: id, Name: name, Description: description, URL: url, CreatedAt: createdAt}, nil
}

// Nomenclature returns the bare manufacturer name
func (m *Manufacturer) Nomenclature() string {
	return m.Name
}

// Units is a side table of measurement units; the long form is unique
type Units struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Short       string `gorm:"not null;size:25" json:"short"`
	Long        string `gorm:"uniqueIndex;not null;size:255" json:"long"`
	Description string `gorm:"not null;size:255" json:"description"`
}

// TableName customizes the table name
func (Units) TableName() string {
	return "units"
}

// NewUnits builds a validated unit of measure
func NewUnits(short, long, description string, id uint) (*Units, error) {
	if err := checkText("units short form", short, MaxShortLen); err != nil {
		return nil, err
	}
	if err := checkText("units long form", long, MaxTextLen); err != nil {
		return nil, err
	}
	if err := checkText("units description", description, MaxTextLen); err != nil {
		return nil, err
	}
	return &Units{ID: id, Short: short, Long: long, Description: description}, nil
}

// Nomenclature returns the long form, the unique lookup key for units
func (u *Units) Nomenclature() string {
	return u.Long
}

// Device is a physical instrument inside one system
type Device struct {
	ID             uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string        `gorm:"uniqueIndex:idx_devices_system_name;not null;size:12" json:"name"`
	Description    string        `gorm:"not null;size:255" json:"description"`
	SystemID       uint          `gorm:"uniqueIndex:idx_devices_system_name;not null" json:"system_id"`
	System         *System       `gorm:"-" json:"-"`
	URL            string        `gorm:"not null;size:255" json:"url"`
	ManufacturerID uint          `gorm:"not null" json:"manufacturer_id"`
	Manufacturer   *Manufacturer `gorm:"-" json:"-"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// TableName customizes the table name
func (Device) TableName() string {
	return "devices"
}

// NewDevice builds a validated Device belonging to the given system.
// The URL points at the device documentation and is mandatory, as is
// the manufacturer.
func NewDevice(name, description string, system *System, url string, mfg *Manufacturer, id uint, createdAt time.Time) (*Device, error) {
	if system == nil {
		return nil, fmt.Errorf("%w: devices require a valid system", ErrValidation)
	}
	if mfg == nil {
		return nil, fmt.Errorf("%w: devices require a valid manufacturer", ErrValidation)
	}
	if err := checkText("device name", name, MaxNameLen); err != nil {
		return nil, err
	}
	if err := checkText("device description", description, MaxTextLen); err != nil {
		return nil, err
	}
	if err := checkText("device URL", url, MaxTextLen); err != nil {
		return nil, err
	}
	return &Device{
		ID:             id,
		Name:           name,
		Description:    description,
		SystemID:       system.ID,
		System:         system,
		URL:            url,
		ManufacturerID: mfg.ID,
		Manufacturer:   mfg,
		CreatedAt:      createdAt,
	}, nil
}

// Nomenclature prepends the system nomenclature
func (d *Device) Nomenclature() string {
	if d.System != nil {
		return d.System.Nomenclature() + "." + d.Name
	}
	return d.Name
}

// Sensor is a single measurement channel of a device
type Sensor struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex:idx_sensors_device_name;not null;size:12" json:"name"`
	Description string    `gorm:"not null;size:255" json:"description"`
	DeviceID    uint      `gorm:"uniqueIndex:idx_sensors_device_name;not null" json:"device_id"`
	Device      *Device   `gorm:"-" json:"-"`
	UnitsID     uint      `gorm:"not null" json:"units_id"`
	Units       *Units    `gorm:"-" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName customizes the table name
func (Sensor) TableName() string {
	return "sensors"
}

// NewSensor builds a validated Sensor belonging to the given device,
// measuring in the given units.
func NewSensor(name, description string, device *Device, units *Units, id uint, createdAt time.Time) (*Sensor, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: sensors require a valid device", ErrValidation)
	}
	if units == nil {
		return nil, fmt.Errorf("%w: sensors require valid units", ErrValidation)
	}
	if err := checkText("sensor name", name, MaxNameLen); err != nil {
		return nil, err
	}
	if err := checkText("sensor description", description, MaxTextLen); err != nil {
		return nil, err
	}
	return &Sensor{
		ID:          id,
		Name:        name,
		Description: description,
		DeviceID:    device.ID,
		Device:      device,
		UnitsID:     units.ID,
		Units:       units,
		CreatedAt:   createdAt,
	}, nil
}

// Nomenclature prepends the device nomenclature
func (s *Sensor) Nomenclature() string {
	if s.Device != nil {
		return s.Device.Nomenclature() + "." + s.Name
	}
	return s.Name
}

// GetAllModels returns all models for schema setup
func GetAllModels() []interface{} {
	return []interface{}{
		&Owner{},
		&Project{},
		&System{},
		&Manufacturer{},
		&Units{},
		&Device{},
		&Sensor{},
		&Record{},
	}
}
