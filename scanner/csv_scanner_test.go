package scanner_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"slowctl/models"
	"slowctl/repository"
	"slowctl/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupScanner(t *testing.T) (*scanner.CSVScanner, *repository.Repository) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "slowctl_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.GetAllModels()...))

	repo := repository.New(db, "")
	return scanner.NewCSVScanner(repo), repo
}

func seedSensor(t *testing.T, repo *repository.Repository) *models.Sensor {
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

func TestScanDirectoryIngestsMeasurements(t *testing.T) {
	cs, repo := setupScanner(t)
	sensor := seedSensor(t, repo)

	dir := t.TempDir()
	content := "sensor,value,error\n" +
		"spinlab.he3.polarizer.laser.temp,4.2,0.05\n" +
		"spinlab.he3.polarizer.laser.temp,4.3,0.05\n" +
		"spinlab.he3.polarizer.laser.nosuch,1.0,0.1\n" +
		"spinlab.he3.polarizer.laser.temp,notanumber,0.05\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "capture.csv"), []byte(content), 0644))

	require.NoError(t, cs.ScanDirectory(dir))

	now := time.Now()
	set, err := repo.GetRecords(sensor, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, 2, set.N)
	assert.ElementsMatch(t, []float64{4.2, 4.3}, set.Values)
}

func TestScanDirectoryMissingDir(t *testing.T) {
	cs, _ := setupScanner(t)
	assert.Error(t, cs.ScanDirectory(filepath.Join(t.TempDir(), "nosuch")))
}

func TestScanDirectoryNoCSVFiles(t *testing.T) {
	cs, _ := setupScanner(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))
	assert.NoError(t, cs.ScanDirectory(dir))
}
