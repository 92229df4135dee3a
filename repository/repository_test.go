package repository_test

import (
	"path/filepath"
	"testing"
	"time"

	"slowctl/models"
	"slowctl/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRepo opens a throwaway sqlite database with the full schema
func setupRepo(t *testing.T) (*repository.Repository, *gorm.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "slowctl_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.GetAllModels()...))

	return repository.New(db, ""), db
}

// seedChain creates one full hierarchy through the repository API
func seedChain(t *testing.T, repo *repository.Repository) *models.Sensor {
	t.Helper()

	_, err := repo.CreateOwner("spinlab", "Spin physics lab")
	require.NoError(t, err)
	_, err = repo.CreateProject("spinlab.he3", "Helium-3 target")
	require.NoError(t, err)
	_, err = repo.CreateSystem("spinlab.he3.polarizer", "Optical pumping station")
	require.NoError(t, err)

	mfg, err := repo.CreateManufacturer("acme", "Acme Instruments", "https://acme.example")
	require.NoError(t, err)
	_, err = repo.CreateDevice("spinlab.he3.polarizer.laser", "Pump laser", "https://acme.example/laser", mfg)
	require.NoError(t, err)

	units, err := repo.CreateUnits("K", "kelvin", "Temperature")
	require.NoError(t, err)
	sensor, err := repo.CreateSensor("spinlab.he3.polarizer.laser.temp", "Diode temperature", units)
	require.NoError(t, err)

	return sensor
}

// seedRecord inserts a measurement with an explicit timestamp, bypassing the
// store-assigned clock so range tests are deterministic
func seedRecord(t *testing.T, db *gorm.DB, sensor *models.Sensor, value, uncertainty float64, at time.Time) {
	t.Helper()
	row := models.Record{Value: value, Error: uncertainty, SensorID: sensor.ID, RecordedAt: at}
	require.NoError(t, db.Table("records").Create(&row).Error)
}

func TestCreateGetRoundTrip(t *testing.T) {
	repo, _ := setupRepo(t)
	seedChain(t, repo)

	owner, err := repo.GetOwner("spinlab")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "spinlab", owner.Nomenclature())
	assert.NotZero(t, owner.ID)
	assert.False(t, owner.CreatedAt.IsZero())

	project, err := repo.GetProject("spinlab.he3")
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, "spinlab.he3", project.Nomenclature())

	system, err := repo.GetSystem("spinlab.he3.polarizer")
	require.NoError(t, err)
	require.NotNil(t, system)
	assert.Equal(t, "spinlab.he3.polarizer", system.Nomenclature())

	device, err := repo.GetDevice("spinlab.he3.polarizer.laser")
	require.NoError(t, err)
	require.NotNil(t, device)
	assert.Equal(t, "spinlab.he3.polarizer.laser", device.Nomenclature())
	assert.Equal(t, "acme", device.Manufacturer.Name)

	sensor, err := repo.GetSensor("spinlab.he3.polarizer.laser.temp")
	require.NoError(t, err)
	require.NotNil(t, sensor)
	assert.Equal(t, "spinlab.he3.polarizer.laser.temp", sensor.Nomenclature())
	assert.Equal(t, "K", sensor.Units.Short)
}

func TestGetByID(t *testing.T) {
	repo, _ := setupRepo(t)
	created := seedChain(t, repo)

	sensor, err := repo.GetSensorByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, sensor)
	assert.Equal(t, created.Nomenclature(), sensor.Nomenclature())

	device, err := repo.GetDeviceByID(sensor.DeviceID)
	require.NoError(t, err)
	require.NotNil(t, device)
	assert.Equal(t, "spinlab.he3.polarizer.laser", device.Nomenclature())

	// Unknown ids are a normal empty result
	missing, err := repo.GetSensorByID(9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDuplicateScopedToParent(t *testing.T) {
	repo, _ := setupRepo(t)
	seedChain(t, repo)

	// Same terminal name under the same parent is rejected
	_, err := repo.CreateProject("spinlab.he3", "duplicate")
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	// The same terminal name under a different parent is fine
	_, err = repo.CreateOwner("jlab", "Another lab")
	require.NoError(t, err)
	_, err = repo.CreateProject("jlab.he3", "Helium-3 target elsewhere")
	require.NoError(t, err)

	_, err = repo.CreateOwner("spinlab", "duplicate root")
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = repo.CreateUnits("K", "kelvin", "duplicate long form")
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = repo.CreateManufacturer("acme", "duplicate", "https://acme.example")
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestBrokenAncestorVersusMissingLeaf(t *testing.T) {
	repo, _ := setupRepo(t)
	seedChain(t, repo)

	// Broken ancestor chain is an error naming the missing level
	_, err := repo.GetSystem("spinlab.nosuch.polarizer")
	require.ErrorIs(t, err, repository.ErrAncestorNotFound)
	assert.Contains(t, err.Error(), "nosuch")

	_, err = repo.GetSensor("spinlab.he3.polarizer.nosuch.temp")
	assert.ErrorIs(t, err, repository.ErrAncestorNotFound)

	_, err = repo.GetProject("nosuch.he3")
	assert.ErrorIs(t, err, repository.ErrAncestorNotFound)

	// A valid ancestor chain with a missing leaf is a nil result, not an error
	system, err := repo.GetSystem("spinlab.he3.nosuch")
	require.NoError(t, err)
	assert.Nil(t, system)

	sensor, err := repo.GetSensor("spinlab.he3.polarizer.laser.nosuch")
	require.NoError(t, err)
	assert.Nil(t, sensor)

	owner, err := repo.GetOwner("nosuch")
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestCreateRequiresAncestors(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.CreateProject("nosuch.he3", "no owner yet")
	assert.ErrorIs(t, err, repository.ErrAncestorNotFound)

	_, err = repo.CreateSystem("nosuch.he3.polarizer", "no chain")
	assert.ErrorIs(t, err, repository.ErrAncestorNotFound)
}

func TestCreateRequiresRelations(t *testing.T) {
	repo, _ := setupRepo(t)
	seedChain(t, repo)

	_, err := repo.CreateDevice("spinlab.he3.polarizer.probe", "Probe", "https://acme.example/probe", nil)
	assert.ErrorIs(t, err, repository.ErrMissingRelation)

	_, err = repo.CreateSensor("spinlab.he3.polarizer.laser.power", "Output power", nil)
	assert.ErrorIs(t, err, repository.ErrMissingRelation)
}

func TestCreateValidatesFields(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.CreateOwner("a-name-that-is-way-too-long", "desc")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = repo.CreateOwner("lab", "")
	assert.ErrorIs(t, err, models.ErrValidation)

	// Wrong number of dotted components
	_, err = repo.CreateProject("justoneword", "desc")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = repo.CreateSystem("owner.project.system.extra", "desc")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestListScoping(t *testing.T) {
	repo, _ := setupRepo(t)
	seedChain(t, repo)

	owner, err := repo.GetOwner("spinlab")
	require.NoError(t, err)

	_, err = repo.CreateOwner("jlab", "Another lab")
	require.NoError(t, err)
	_, err = repo.CreateProject("jlab.moller", "Scattering experiment")
	require.NoError(t, err)

	all, err := repo.ListProjects(0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := repo.ListProjects(owner.ID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "spinlab.he3", scoped[0].Nomenclature())

	owners, err := repo.ListOwners()
	require.NoError(t, err)
	assert.Len(t, owners, 2)

	// No matching rows is an empty slice, not an error
	none, err := repo.ListProjects(9999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecordMeasurement(t *testing.T) {
	repo, _ := setupRepo(t)
	sensor := seedChain(t, repo)

	record, err := repo.RecordMeasurement(sensor, 4.2, 0.05)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.NotZero(t, record.ID)
	assert.False(t, record.RecordedAt.IsZero())
	assert.Equal(t, 4.2, record.Value)
	assert.Equal(t, 0.05, record.Error)
	assert.Equal(t, sensor.ID, record.SensorID)

	_, err = repo.RecordMeasurement(nil, 1.0, 0.1)
	assert.ErrorIs(t, err, repository.ErrMissingRelation)
}

func TestGetRecordsRangeAndOrdering(t *testing.T) {
	repo, db := setupRepo(t)
	sensor := seedChain(t, repo)

	base := time.Date(2017, 7, 31, 12, 0, 0, 0, time.UTC)
	t0, t1, t2 := base, base.Add(time.Hour), base.Add(2*time.Hour)
	// Seed out of order to prove the query sorts
	seedRecord(t, db, sensor, 30, 0.3, t2)
	seedRecord(t, db, sensor, 10, 0.1, t0)
	seedRecord(t, db, sensor, 20, 0.2, t1)

	// Inclusive range picks up both endpoints
	set, err := repo.GetRecords(sensor, t0, t1)
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, 2, set.N)
	assert.Equal(t, []float64{10, 20}, set.Values)
	assert.True(t, set.Times[0].Before(set.Times[1]))

	full, err := repo.GetRecords(sensor, t0, t2)
	require.NoError(t, err)
	require.NotNil(t, full)
	assert.Equal(t, []float64{10, 20, 30}, full.Values)

	// No qualifying rows is a nil result, not an error
	empty, err := repo.GetRecords(sensor, base.Add(24*time.Hour), base.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, empty)

	// An inverted range passes through and yields no rows
	inverted, err := repo.GetRecords(sensor, t2, t0)
	require.NoError(t, err)
	assert.Nil(t, inverted)

	_, err = repo.GetRecords(nil, t0, t1)
	assert.ErrorIs(t, err, repository.ErrMissingRelation)
}

func TestGetMostRecentRecord(t *testing.T) {
	repo, db := setupRepo(t)
	sensor := seedChain(t, repo)

	// No records yet: nil result, not an error
	latest, err := repo.GetMostRecentRecord(sensor)
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2017, 7, 31, 12, 0, 0, 0, time.UTC)
	seedRecord(t, db, sensor, 10, 0.1, base)
	seedRecord(t, db, sensor, 30, 0.3, base.Add(2*time.Hour))
	seedRecord(t, db, sensor, 20, 0.2, base.Add(time.Hour))

	latest, err = repo.GetMostRecentRecord(sensor)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 30.0, latest.Value)

	_, err = repo.GetMostRecentRecord(nil)
	assert.ErrorIs(t, err, repository.ErrMissingRelation)
}

func TestRecordsIsolatedPerSensor(t *testing.T) {
	repo, db := setupRepo(t)
	sensor := seedChain(t, repo)

	units, err := repo.GetUnits("kelvin")
	require.NoError(t, err)
	other, err := repo.CreateSensor("spinlab.he3.polarizer.laser.cell", "Cell temperature", units)
	require.NoError(t, err)

	base := time.Date(2017, 7, 31, 12, 0, 0, 0, time.UTC)
	seedRecord(t, db, sensor, 10, 0.1, base)
	seedRecord(t, db, other, 99, 0.9, base)

	set, err := repo.GetRecords(sensor, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, []float64{10}, set.Values)
}

func TestRecordsTableSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slowctl_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.GetAllModels()...))
	require.NoError(t, db.Table("playground").AutoMigrate(&models.Record{}))

	prod := repository.New(db, "records")
	dev := repository.New(db, "playground")
	sensor := seedChain(t, prod)

	_, err = dev.RecordMeasurement(sensor, 1.0, 0.1)
	require.NoError(t, err)

	// The development measurement never lands in the production table
	latest, err := prod.GetMostRecentRecord(sensor)
	require.NoError(t, err)
	assert.Nil(t, latest)

	latest, err = dev.GetMostRecentRecord(sensor)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 1.0, latest.Value)
}
