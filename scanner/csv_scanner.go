// Package scanner bulk-ingests measurement CSV files into the slow-control
// record log. Each row names the measuring sensor by full nomenclature; the
// store assigns the record timestamps at insert time, so the scanner is meant
// for live capture directories, not historical backfill.
package scanner

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"slowctl/logger"
	"slowctl/models"
	"slowctl/repository"
)

// CSVScanner handles scanning and processing measurement CSV files
type CSVScanner struct {
	repo        *repository.Repository
	workerCount int

	// The repository is not safe for unsynchronized concurrent use, so
	// workers parse in parallel but serialize all repository access.
	mu      sync.Mutex
	sensors map[string]*models.Sensor
}

// FileJob represents a CSV file to be processed
type FileJob struct {
	FilePath string
	FileName string
}

// ProcessResult contains the result of processing a CSV file
type ProcessResult struct {
	FilePath    string
	RecordCount int
	ErrorCount  int
	Duration    time.Duration
	Error       error
}

// NewCSVScanner creates a new CSV scanner
func NewCSVScanner(repo *repository.Repository) *CSVScanner {
	// Default to number of CPU cores for parallel parsing
	workerCount := runtime.NumCPU()
	if workerCount > 8 {
		workerCount = 8
	}

	return &CSVScanner{
		repo:        repo,
		workerCount: workerCount,
		sensors:     make(map[string]*models.Sensor),
	}
}

// SetWorkerCount sets the number of parallel workers
func (cs *CSVScanner) SetWorkerCount(count int) {
	if count > 0 {
		cs.workerCount = count
	}
}

// ScanDirectory scans a directory for CSV files and ingests them
func (cs *CSVScanner) ScanDirectory(directoryPath string) error {
	logger.Printf("Scanning directory: %s", directoryPath)

	// Check if directory exists
	if _, err := os.Stat(directoryPath); os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", directoryPath)
	}

	// Find all CSV files
	csvFiles, err := cs.findCSVFiles(directoryPath)
	if err != nil {
		return fmt.Errorf("failed to find CSV files: %w", err)
	}

	if len(csvFiles) == 0 {
		logger.Println("No CSV files found in the directory")
		return nil
	}

	logger.Printf("Found %d CSV file(s) to process", len(csvFiles))
	logger.Printf("Processing with %d parallel workers", cs.workerCount)

	// Process files in parallel
	results := cs.processFilesParallel(csvFiles)

	// Display results summary
	cs.displaySummary(results)

	return nil
}

// findCSVFiles finds all CSV files in the specified directory (non-recursive)
func (cs *CSVScanner) findCSVFiles(directoryPath string) ([]FileJob, error) {
	var csvFiles []FileJob

	entries, err := os.ReadDir(directoryPath)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		// Skip subdirectories
		if entry.IsDir() {
			continue
		}

		if strings.ToLower(filepath.Ext(entry.Name())) == ".csv" {
			csvFiles = append(csvFiles, FileJob{
				FilePath: filepath.Join(directoryPath, entry.Name()),
				FileName: entry.Name(),
			})
		}
	}

	return csvFiles, nil
}

// processFilesParallel processes CSV files using worker goroutines
func (cs *CSVScanner) processFilesParallel(files []FileJob) []ProcessResult {
	jobs := make(chan FileJob, len(files))
	results := make(chan ProcessResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < cs.workerCount; i++ {
		wg.Add(1)
		go cs.worker(jobs, results, &wg)
	}

	go func() {
		for _, file := range files {
			jobs <- file
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var allResults []ProcessResult
	for result := range results {
		allResults = append(allResults, result)
	}

	return allResults
}

// worker processes CSV files from the job channel
func (cs *CSVScanner) worker(jobs <-chan FileJob, results chan<- ProcessResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		results <- cs.processCSVFile(job)
	}
}

// processCSVFile ingests a single CSV file
func (cs *CSVScanner) processCSVFile(job FileJob) ProcessResult {
	startTime := time.Now()
	result := ProcessResult{
		FilePath: job.FilePath,
	}

	logger.Printf("Processing file: %s", job.FileName)

	file, err := os.Open(job.FilePath)
	if err != nil {
		result.Error = fmt.Errorf("failed to open file: %w", err)
		result.Duration = time.Since(startTime)
		return result
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	rows, err := reader.ReadAll()
	if err != nil {
		result.Error = fmt.Errorf("failed to read CSV: %w", err)
		result.Duration = time.Since(startTime)
		return result
	}

	if len(rows) == 0 {
		result.Error = fmt.Errorf("empty CSV file")
		result.Duration = time.Since(startTime)
		return result
	}

	recorded, errorCount := cs.ingestRows(rows, job.FileName)
	result.RecordCount = recorded
	result.ErrorCount = errorCount
	result.Duration = time.Since(startTime)

	logger.Printf("Completed %s: %d records ingested, %d errors in %v",
		job.FileName, result.RecordCount, result.ErrorCount, result.Duration)

	return result
}

// ingestRows records each parsed measurement. Expected columns:
// sensor nomenclature, value, error.
func (cs *CSVScanner) ingestRows(rows [][]string, fileName string) (int, int) {
	var recorded, errorCount int

	// Detect if first row is header
	startRow := 0
	if len(rows) > 0 && cs.isHeaderRow(rows[0]) {
		startRow = 1
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]

		// Skip empty rows
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		if len(row) < 3 {
			errorCount++
			logger.Warnf("Row %d in %s has insufficient columns (expected 3, got %d)",
				i+1, fileName, len(row))
			continue
		}

		nomenclature := strings.TrimSpace(row[0])
		value, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			errorCount++
			logger.Warnf("Row %d in %s has invalid value %q", i+1, fileName, row[1])
			continue
		}
		uncertainty, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			errorCount++
			logger.Warnf("Row %d in %s has invalid error %q", i+1, fileName, row[2])
			continue
		}

		if err := cs.record(nomenclature, value, uncertainty); err != nil {
			errorCount++
			logger.Warnf("Row %d in %s not recorded: %v", i+1, fileName, err)
			continue
		}
		recorded++
	}

	return recorded, errorCount
}

// record resolves the sensor (cached per nomenclature) and appends one
// measurement, holding the repository lock across both steps
func (cs *CSVScanner) record(nomenclature string, value, uncertainty float64) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	sensor, ok := cs.sensors[nomenclature]
	if !ok {
		var err error
		sensor, err = cs.repo.GetSensor(nomenclature)
		if err != nil {
			return err
		}
		if sensor == nil {
			return fmt.Errorf("sensor %q is not in the registry", nomenclature)
		}
		cs.sensors[nomenclature] = sensor
	}

	_, err := cs.repo.RecordMeasurement(sensor, value, uncertainty)
	return err
}

// isHeaderRow guesses whether a row is a header by checking if the value
// column fails to parse as a number
func (cs *CSVScanner) isHeaderRow(row []string) bool {
	if len(row) < 3 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	return err != nil
}

// displaySummary logs the outcome of a directory scan
func (cs *CSVScanner) displaySummary(results []ProcessResult) {
	var totalRecords, totalErrors, failedFiles int

	for _, result := range results {
		if result.Error != nil {
			failedFiles++
			logger.Errorf("File %s failed: %v", result.FilePath, result.Error)
			continue
		}
		totalRecords += result.RecordCount
		totalErrors += result.ErrorCount
	}

	logger.LogDivider()
	logger.Printf("Scan summary: %d file(s), %d failed", len(results), failedFiles)
	logger.Printf("Records ingested: %d", totalRecords)
	logger.Printf("Rows rejected: %d", totalErrors)
}
