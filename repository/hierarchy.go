package repository

import (
	"fmt"
	"strings"
	"time"

	"slowctl/conditions"
	"slowctl/models"
)

// CreateOwner adds a new owner, the root of a naming hierarchy
func (r *Repository) CreateOwner(name, description string) (*models.Owner, error) {
	owner, err := models.NewOwner(name, description, 0, time.Time{})
	if err != nil {
		return nil, err
	}

	existing, err := r.GetOwner(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: owner %q", ErrDuplicate, name)
	}

	row := models.Owner{Name: name, Description: description}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to insert owner: %w", err)
	}
	saved, err := r.rereadOwner(row.ID)
	if err != nil {
		return nil, err
	}
	owner.ID = saved.ID
	owner.CreatedAt = saved.CreatedAt
	return owner, nil
}

// GetOwner looks up an owner by name. A missing owner is a normal empty
// result: both return values are nil.
func (r *Repository) GetOwner(name string) (*models.Owner, error) {
	return r.findOwner(conditions.EQ(name).Clause("name"))
}

// GetOwnerByID looks up an owner by database id
func (r *Repository) GetOwnerByID(id uint) (*models.Owner, error) {
	return r.findOwner(conditions.EQ(id).Clause("id"))
}

func (r *Repository) findOwner(clause string, args []interface{}) (*models.Owner, error) {
	var row models.Owner
	if err := r.db.Where(clause, args...).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	return models.NewOwner(row.Name, row.Description, row.ID, row.CreatedAt)
}

func (r *Repository) rereadOwner(id uint) (*models.Owner, error) {
	owner, err := r.GetOwnerByID(id)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("failed to re-read owner %d after insert", id)
	}
	return owner, nil
}

// ListOwners returns all owners; an empty registry yields an empty slice
func (r *Repository) ListOwners() ([]*models.Owner, error) {
	var rows []models.Owner
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	owners := make([]*models.Owner, 0, len(rows))
	for _, row := range rows {
		owner, err := models.NewOwner(row.Name, row.Description, row.ID, row.CreatedAt)
		if err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, nil
}

// CreateProject adds a new project under an existing owner. name is the full
// dotted nomenclature "owner.project".
func (r *Repository) CreateProject(name, description string) (*models.Project, error) {
	parts, err := splitNomenclature(name, 2)
	if err != nil {
		return nil, err
	}
	ownerName, projName := parts[0], parts[1]

	owner, err := r.GetOwner(ownerName)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: owner %q", ErrAncestorNotFound, ownerName)
	}

	existing, err := r.projectUnder(owner, projName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: project %q", ErrDuplicate, name)
	}

	project, err := models.NewProject(projName, description, owner, 0, time.Time{})
	if err != nil {
		return nil, err
	}
	row := models.Project{Name: projName, Description: description, OwnerID: owner.ID}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}
	saved, err := r.projectUnder(owner, projName)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("failed to re-read project %d after insert", row.ID)
	}
	project.ID = saved.ID
	project.CreatedAt = saved.CreatedAt
	return project, nil
}

// GetProject looks up a project by full nomenclature "owner.project".
// A missing owner is an error; a missing project is a nil result.
func (r *Repository) GetProject(name string) (*models.Project, error) {
	parts, err := splitNomenclature(name, 2)
	if err != nil {
		return nil, err
	}
	owner, err := r.GetOwner(parts[0])
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: owner %q", ErrAncestorNotFound, parts[0])
	}
	return r.projectUnder(owner, parts[1])
}

// GetProjectByID looks up a project by database id
func (r *Repository) GetProjectByID(id uint) (*models.Project, error) {
	var row models.Project
	clause, args := conditions.EQ(id).Clause("id")
	if err := r.db.Where(clause, args...).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	owner, err := r.GetOwnerByID(row.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: owner %d of project %d", ErrAncestorNotFound, row.OwnerID, row.ID)
	}
	return models.NewProject(row.Name, row.Description, owner, row.ID, row.CreatedAt)
}

// projectUnder fetches the project with the given terminal name scoped to
// one resolved owner
func (r *Repository) projectUnder(owner *models.Owner, name string) (*models.Project, error) {
	var row models.Project
	nameClause, nameArgs := conditions.EQ(name).Clause("name")
	ownerClause, ownerArgs := conditions.EQ(owner.ID).Clause("owner_id")
	err := r.db.Where(nameClause, nameArgs...).Where(ownerClause, ownerArgs...).Take(&row).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	return models.NewProject(row.Name, row.Description, owner, row.ID, row.CreatedAt)
}

// ListProjects returns all projects, optionally scoped to one owner id.
// Pass 0 for an unscoped listing.
func (r *Repository) ListProjects(ownerID uint) ([]*models.Project, error) {
	query := r.db
	if ownerID != 0 {
		clause, args := conditions.EQ(ownerID).Clause("owner_id")
		query = query.Where(clause, args...)
	}
	var rows []models.Project
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	projects := make([]*models.Project, 0, len(rows))
	for _, row := range rows {
		owner, err := r.GetOwnerByID(row.OwnerID)
		if err != nil {
			return nil, err
		}
		if owner == nil {
			return nil, fmt.Errorf("%w: owner %d of project %d", ErrAncestorNotFound, row.OwnerID, row.ID)
		}
		project, err := models.NewProject(row.Name, row.Description, owner, row.ID, row.CreatedAt)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// CreateSystem adds a new system under an existing project. name is the full
// dotted nomenclature "owner.project.system".
func (r *Repository) CreateSystem(name, description string) (*models.System, error) {
	parts, err := splitNomenclature(name, 3)
	if err != nil {
		return nil, err
	}
	sysName := parts[2]
	parentName := strings.Join(parts[:2], ".")

	project, err := r.GetProject(parentName)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("%w: project %q", ErrAncestorNotFound, parentName)
	}

	existing, err := r.systemUnder(project, sysName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: system %q", ErrDuplicate, name)
	}

	system, err := models.NewSystem(sysName, description, project, 0, time.Time{})
	if err != nil {
		return nil, err
	}
	row := models.System{Name: sysName, Description: description, ProjectID: project.ID}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to insert system: %w", err)
	}
	saved, err := r.systemUnder(project, sysName)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("failed to re-read system %d after insert", row.ID)
	}
	system.ID = saved.ID
	system.CreatedAt = saved.CreatedAt
	return system, nil
}

// GetSystem looks up a system by full nomenclature "owner.project.system".
// A broken ancestor chain is an error; a missing system is a nil result.
func (r *Repository) GetSystem(name string) (*models.System, error) {
	parts, err := splitNomenclature(name, 3)
	if err != nil {
		return nil, err
	}
	parentName := strings.Join(parts[:2], ".")
	project, err := r.GetProject(parentName)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("%w: project %q", ErrAncestorNotFound, parentName)
	}
	return r.systemUnder(project, parts[2])
}

// GetSystemByID looks up a system by database id
func (r *Repository) GetSystemByID(id uint) (*models.System, error) {
	var row models.System
	clause, args := conditions.EQ(id).Clause("id")
	if err := r.db.Where(clause, args...).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query systems: %w", err)
	}
	project, err := r.GetProjectByID(row.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("%w: project %d of system %d", ErrAncestorNotFound, row.ProjectID, row.ID)
	}
	return models.NewSystem(row.Name, row.Description, project, row.ID, row.CreatedAt)
}

func (r *Repository) systemUnder(project *models.Project, name string) (*models.System, error) {
	var row models.System
	nameClause, nameArgs := conditions.EQ(name).Clause("name")
	projClause, projArgs := conditions.EQ(project.ID).Clause("project_id")
	err := r.db.Where(nameClause, nameArgs...).Where(projClause, projArgs...).Take(&row).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query systems: %w", err)
	}
	return models.NewSystem(row.Name, row.Description, project, row.ID, row.CreatedAt)
}

// ListSystems returns all systems, optionally scoped to one project id.
// Pass 0 for an unscoped listing.
func (r *Repository) ListSystems(projectID uint) ([]*models.System, error) {
	query := r.db
	if projectID != 0 {
		clause, args := conditions.EQ(projectID).Clause("project_id")
		query = query.Where(clause, args...)
	}
	var rows []models.System
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list systems: %w", err)
	}
	systems := make([]*models.System, 0, len(rows))
	for _, row := range rows {
		project, err := r.GetProjectByID(row.ProjectID)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, fmt.Errorf("%w: project %d of system %d", ErrAncestorNotFound, row.ProjectID, row.ID)
		}
		system, err := models.NewSystem(row.Name, row.Description, project, row.ID, row.CreatedAt)
		if err != nil {
			return nil, err
		}
		systems = append(systems, system)
	}
	return systems, nil
}

// CreateDevice adds a new device under an existing system. name is the full
// dotted nomenclature "owner.project.system.device"; url points at the device
// documentation and the manufacturer is mandatory.
func (r *Repository) CreateDevice(name, description, url string, mfg *models.Manufacturer) (*models.Device, error) {
	parts, err := splitNomenclature(name, 4)
	if err != nil {
		return nil, err
	}
	devName := parts[3]
	parentName := strings.Join(parts[:3], ".")

	if mfg == nil {
		return nil, fmt.Errorf("%w: a manufacturer is required to create a device", ErrMissingRelation)
	}

	system, err := r.GetSystem(parentName)
	if err != nil {
		return nil, err
	}
	if system == nil {
		return nil, fmt.Errorf("%w: system %q", ErrAncestorNotFound, parentName)
	}

	existing, err := r.deviceUnder(system, devName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: device %q", ErrDuplicate, name)
	}

	device, err := models.NewDevice(devName, description, system, url, mfg, 0, time.Time{})
	if err != nil {
		return nil, err
	}
	row := models.Device{
		Name:           devName,
		Description:    description,
		SystemID:       system.ID,
		URL:            url,
		ManufacturerID: mfg.ID,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to insert device: %w", err)
	}
	saved, err := r.deviceUnder(system, devName)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("failed to re-read device %d after insert", row.ID)
	}
	device.ID = saved.ID
	device.CreatedAt = saved.CreatedAt
	return device, nil
}

// GetDevice looks up a device by full nomenclature
// "owner.project.system.device"
func (r *Repository) GetDevice(name string) (*models.Device, error) {
	parts, err := splitNomenclature(name, 4)
	if err != nil {
		return nil, err
	}
	parentName := strings.Join(parts[:3], ".")
	system, err := r.GetSystem(parentName)
	if err != nil {
		return nil, err
	}
	if system == nil {
		return nil, fmt.Errorf("%w: system %q", ErrAncestorNotFound, parentName)
	}
	return r.deviceUnder(system, parts[3])
}

// GetDeviceByID looks up a device by database id
func (r *Repository) GetDeviceByID(id uint) (*models.Device, error) {
	var row models.Device
	clause, args := conditions.EQ(id).Clause("id")
	if err := r.db.Where(clause, args...).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	return r.resolveDevice(&row)
}

func (r *Repository) deviceUnder(system *models.System, name string) (*models.Device, error) {
	var row models.Device
	nameClause, nameArgs := conditions.EQ(name).Clause("name")
	sysClause, sysArgs := conditions.EQ(system.ID).Clause("system_id")
	err := r.db.Where(nameClause, nameArgs...).Where(sysClause, sysArgs...).Take(&row).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	mfg, err := r.requireManufacturer(row.ManufacturerID, row.ID)
	if err != nil {
		return nil, err
	}
	return models.NewDevice(row.Name, row.Description, system, row.URL, mfg, row.ID, row.CreatedAt)
}

// resolveDevice attaches the system chain and manufacturer to a raw row
func (r *Repository) resolveDevice(row *models.Device) (*models.Device, error) {
	system, err := r.GetSystemByID(row.SystemID)
	if err != nil {
		return nil, err
	}
	if system == nil {
		return nil, fmt.Errorf("%w: system %d of device %d", ErrAncestorNotFound, row.SystemID, row.ID)
	}
	mfg, err := r.requireManufacturer(row.ManufacturerID, row.ID)
	if err != nil {
		return nil, err
	}
	return models.NewDevice(row.Name, row.Description, system, row.URL, mfg, row.ID, row.CreatedAt)
}

func (r *Repository) requireManufacturer(mfgID, deviceID uint) (*models.Manufacturer, error) {
	mfg, err := r.GetManufacturerByID(mfgID)
	if err != nil {
		return nil, err
	}
	if mfg == nil {
		return nil, fmt.Errorf("%w: manufacturer %d of device %d", ErrMissingRelation, mfgID, deviceID)
	}
	return mfg, nil
}

// ListDevices returns all devices, optionally scoped to one system id.
// Pass 0 for an unscoped listing.
func (r *Repository) ListDevices(systemID uint) ([]*models.Device, error) {
	query := r.db
	if systemID != 0 {
		clause, args := conditions.EQ(systemID).Clause("system_id")
		query = query.Where(clause, args...)
	}
	var rows []models.Device
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	devices := make([]*models.Device, 0, len(rows))
	for i := range rows {
		device, err := r.resolveDevice(&rows[i])
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, nil
}

// CreateSensor adds a new sensor under an existing device. name is the full
// dotted nomenclature "owner.project.system.device.sensor"; the units of
// measure are mandatory.
func (r *Repository) CreateSensor(name, description string, units *models.Units) (*models.Sensor, error) {
	parts, err := splitNomenclature(name, 5)
	if err != nil {
		return nil, err
	}
	senName := parts[4]
	parentName := strings.Join(parts[:4], ".")

	if units == nil {
		return nil, fmt.Errorf("%w: units are required to create a sensor", ErrMissingRelation)
	}

	device, err := r.GetDevice(parentName)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, fmt.Errorf("%w: device %q", ErrAncestorNotFound, parentName)
	}

	existing, err := r.sensorUnder(device, senName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: sensor %q", ErrDuplicate, name)
	}

	sensor, err := models.NewSensor(senName, description, device, units, 0, time.Time{})
	if err != nil {
		return nil, err
	}
	row := models.Sensor{
		Name:        senName,
		Description: description,
		DeviceID:    device.ID,
		UnitsID:     units.ID,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to insert sensor: %w", err)
	}
	saved, err := r.sensorUnder(device, senName)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("failed to re-read sensor %d after insert", row.ID)
	}
	sensor.ID = saved.ID
	sensor.CreatedAt = saved.CreatedAt
	return sensor, nil
}

// GetSensor looks up a sensor by full nomenclature
// "owner.project.system.device.sensor"
func (r *Repository) GetSensor(name string) (*models.Sensor, error) {
	parts, err := splitNomenclature(name, 5)
	if err != nil {
		return nil, err
	}
	parentName := strings.Join(parts[:4], ".")
	device, err := r.GetDevice(parentName)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, fmt.Errorf("%w: device %q", ErrAncestorNotFound, parentName)
	}
	return r.sensorUnder(device, parts[4])
}

// GetSensorByID looks up a sensor by database id
func (r *Repository) GetSensorByID(id uint) (*models.Sensor, error) {
	var row models.Sensor
	clause, args := conditions.EQ(id).Clause("id")
	if err := r.db.Where(clause, args...).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query sensors: %w", err)
	}
	return r.resolveSensor(&row)
}

func (r *Repository) sensorUnder(device *models.Device, name string) (*models.Sensor, error) {
	var row models.Sensor
	nameClause, nameArgs := conditions.EQ(name).Clause("name")
	devClause, devArgs := conditions.EQ(device.ID).Clause("device_id")
	err := r.db.Where(nameClause, nameArgs...).Where(devClause, devArgs...).Take(&row).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query sensors: %w", err)
	}
	units, err := r.requireUnits(row.UnitsID, row.ID)
	if err != nil {
		return nil, err
	}
	return models.NewSensor(row.Name, row.Description, device, units, row.ID, row.CreatedAt)
}

// resolveSensor attaches the device chain and units to a raw row
func (r *Repository) resolveSensor(row *models.Sensor) (*models.Sensor, error) {
	device, err := r.GetDeviceByID(row.DeviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, fmt.Errorf("%w: device %d of sensor %d", ErrAncestorNotFound, row.DeviceID, row.ID)
	}
	units, err := r.requireUnits(row.UnitsID, row.ID)
	if err != nil {
		return nil, err
	}
	return models.NewSensor(row.Name, row.Description, device, units, row.ID, row.CreatedAt)
}

func (r *Repository) requireUnits(unitsID, sensorID uint) (*models.Units, error) {
	units, err := r.GetUnitsByID(unitsID)
	if err != nil {
		return nil, err
	}
	if units == nil {
		return nil, fmt.Errorf("%w: units %d of sensor %d", ErrMissingRelation, unitsID, sensorID)
	}
	return units, nil
}

// ListSensors returns all sensors, optionally scoped to one device id.
// Pass 0 for an unscoped listing.
func (r *Repository) ListSensors(deviceID uint) ([]*models.Sensor, error) {
	query := r.db
	if deviceID != 0 {
		clause, args := conditions.EQ(deviceID).Clause("device_id")
		query = query.Where(clause, args...)
	}
	var rows []models.Sensor
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	sensors := make([]*models.Sensor, 0, len(rows))
	for i := range rows {
		sensor, err := r.resolveSensor(&rows[i])
		if err != nil {
			return nil, err
		}
		sensors = append(sensors, sensor)
	}
	return sensors, nil
}
