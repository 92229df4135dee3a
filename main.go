package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"slowctl/config"
	"slowctl/database"
	"slowctl/logger"
	"slowctl/models"
	"slowctl/repository"
	"slowctl/scanner"
)

func main() {
	if len(os.Args) < 2 {
		showHelp()
		return
	}

	command := os.Args[1]

	// Initialize logging only for commands that need it
	if needsLogging(command) {
		cfg := loadConfig()
		if err := logger.Init(cfg); err != nil {
			log.Fatalf("Failed to initialize logging: %v", err)
		}
		defer func() {
			err := logger.Close()
			if err != nil {
				log.Fatalf("Failed to close logging: %v", err)
			}
		}()
		logger.LogCommand(os.Args[0], os.Args)
	}

	switch command {
	case "connect":
		connectCommand()
	case "migrate":
		migrateCommand()
	case "db:info":
		dbInfoCommand()
	case "list":
		if len(os.Args) < 3 {
			fmt.Println("Error: entity kind required")
			fmt.Println("Usage: slowctl list <owners|projects|systems|manufacturers|devices|units|sensors>")
			return
		}
		listCommand(os.Args[2])
	case "record":
		if len(os.Args) < 5 {
			fmt.Println("Error: sensor nomenclature, value and error required")
			fmt.Println("Usage: slowctl record <sensor> <value> <error>")
			return
		}
		recordCommand(os.Args[2], os.Args[3], os.Args[4])
	case "latest":
		if len(os.Args) < 3 {
			fmt.Println("Error: sensor nomenclature required")
			fmt.Println("Usage: slowctl latest <sensor>")
			return
		}
		latestCommand(os.Args[2])
	case "export":
		if len(os.Args) < 6 {
			fmt.Println("Error: sensor, start, end and output path required")
			fmt.Println("Usage: slowctl export <sensor> <start> <end> <file.csv>")
			return
		}
		exportCommand(os.Args[2], os.Args[3], os.Args[4], os.Args[5])
	case "scan":
		if len(os.Args) < 3 {
			fmt.Println("Error: directory path required")
			fmt.Println("Usage: slowctl scan <directory_path>")
			return
		}
		scanCommand(os.Args[2])
	case "help":
		showHelp()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showHelp()
	}
}

// needsLogging determines which commands need logging
func needsLogging(command string) bool {
	loggingCommands := map[string]bool{
		"connect": true,
		"migrate": true,
		"list":    true,
		"record":  true,
		"latest":  true,
		"export":  true,
		"scan":    true,
	}
	return loggingCommands[command]
}

func showHelp() {
	fmt.Println("slowctl - Slow Control Registry Management Tool")
	fmt.Println("")
	fmt.Println("Usage: slowctl <command> [arguments]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  connect                            Test database connection")
	fmt.Println("  migrate                            Create or update the schema")
	fmt.Println("  db:info                            Show database information")
	fmt.Println("  list <kind>                        List registry entities of one kind")
	fmt.Println("  record <sensor> <value> <error>    Record one measurement")
	fmt.Println("  latest <sensor>                    Show the most recent measurement")
	fmt.Println("  export <sensor> <start> <end> <f>  Export a time range to CSV")
	fmt.Println("  scan <directory>                   Ingest measurement CSV files (non-recursive)")
	fmt.Println("  help                               Show this help message")
	fmt.Println("")
	fmt.Println("Configuration:")
	fmt.Println("  Edit config.yaml to configure database and records table settings")
	fmt.Println("")
	fmt.Println("Names and times:")
	fmt.Println("  Sensors are addressed by dotted nomenclature, e.g. lab.proj.sys.dev.temp")
	fmt.Printf("  Timestamps use the layout %q\n", models.TimeLayout)
}

func loadConfig() *config.Config {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

func connectDatabase() (*config.Config, error) {
	cfg := loadConfig()

	_, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return cfg, nil
}

// openRepository connects and builds the repository over the configured
// measurement table
func openRepository() (*repository.Repository, *config.Config) {
	cfg, err := connectDatabase()
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	return repository.New(database.GetDB(), cfg.RecordsTable()), cfg
}

func connectCommand() {
	logger.Println("Testing database connection...")

	cfg, err := connectDatabase()
	if err != nil {
		logger.Fatalf("Connection failed: %v", err)
	}

	logger.Printf("Successfully connected to %s database", cfg.Database.Driver)

	// Show connection info
	info := database.GetDatabaseInfo(cfg)
	infoJSON, _ := json.MarshalIndent(info, "", "  ")
	logger.Printf("Connection info: %s", infoJSON)
}

func migrateCommand() {
	logger.Println("Creating or updating the schema...")

	cfg, err := connectDatabase()
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Setup(database.GetDB(), cfg); err != nil {
		logger.Fatalf("Schema setup failed: %v", err)
	}

	logger.Println("Schema is up to date")
}

func dbInfoCommand() {
	fmt.Println("Database Information:")
	fmt.Println(strings.Repeat("=", 50))

	cfg, err := connectDatabase()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	info := database.GetDatabaseInfo(cfg)

	fmt.Printf("Database Type:     %v\n", info["driver"])
	fmt.Printf("Records Table:     %v\n", info["records_table"])
	fmt.Printf("Development Mode:  %v\n", info["dev_mode"])
	fmt.Printf("Connection Status: %v\n", getConnectionStatusText(info["connected"]))

	switch cfg.Database.Driver {
	case "mysql", "postgres":
		fmt.Printf("Host:              %v\n", info["host"])
		fmt.Printf("Port:              %v\n", info["port"])
		fmt.Printf("Database:          %v\n", info["database"])
	case "sqlite":
		fmt.Printf("File Path:         %v\n", info["path"])
	}

	if info["connected"] == true {
		fmt.Println("\nConnection Pool:")
		fmt.Printf("  Max Connections: %v\n", info["max_open_connections"])
		fmt.Printf("  Open Connections:%v\n", info["open_connections"])
		fmt.Printf("  In Use:          %v\n", info["in_use"])
		fmt.Printf("  Idle:            %v\n", info["idle"])

		repo := repository.New(database.GetDB(), cfg.RecordsTable())
		owners, err := repo.ListOwners()
		if err == nil {
			fmt.Println("\nRegistry Information:")
			fmt.Printf("  Owners:          %d\n", len(owners))
		}
		sensors, err := repo.ListSensors(0)
		if err == nil {
			fmt.Printf("  Sensors:         %d\n", len(sensors))
		}
	} else {
		fmt.Println("\nConnection failed - unable to retrieve detailed information")
	}

	fmt.Println(strings.Repeat("=", 50))
}

func getConnectionStatusText(connected interface{}) string {
	if conn, ok := connected.(bool); ok && conn {
		return "Connected"
	}
	return "Disconnected"
}

func listCommand(kind string) {
	repo, _ := openRepository()

	switch kind {
	case "owners":
		owners, err := repo.ListOwners()
		if err != nil {
			logger.Fatalf("Failed to list owners: %v", err)
		}
		for _, o := range owners {
			logger.Printf("%-40s %s", o.Nomenclature(), o.Description)
		}
		logger.Printf("%d owner(s)", len(owners))
	case "projects":
		projects, err := repo.ListProjects(0)
		if err != nil {
			logger.Fatalf("Failed to list projects: %v", err)
		}
		for _, p := range projects {
			logger.Printf("%-40s %s", p.Nomenclature(), p.Description)
		}
		logger.Printf("%d project(s)", len(projects))
	case "systems":
		systems, err := repo.ListSystems(0)
		if err != nil {
			logger.Fatalf("Failed to list systems: %v", err)
		}
		for _, s := range systems {
			logger.Printf("%-40s %s", s.Nomenclature(), s.Description)
		}
		logger.Printf("%d system(s)", len(systems))
	case "manufacturers":
		mfgs, err := repo.ListManufacturers()
		if err != nil {
			logger.Fatalf("Failed to list manufacturers: %v", err)
		}
		for _, m := range mfgs {
			logger.Printf("%-40s %s (%s)", m.Name, m.Description, m.URL)
		}
		logger.Printf("%d manufacturer(s)", len(mfgs))
	case "devices":
		devices, err := repo.ListDevices(0)
		if err != nil {
			logger.Fatalf("Failed to list devices: %v", err)
		}
		for _, d := range devices {
			logger.Printf("%-40s %s [%s]", d.Nomenclature(), d.Description, d.Manufacturer.Name)
		}
		logger.Printf("%d device(s)", len(devices))
	case "units":
		units, err := repo.ListUnits()
		if err != nil {
			logger.Fatalf("Failed to list units: %v", err)
		}
		for _, u := range units {
			logger.Printf("%-25s %-40s %s", u.Short, u.Long, u.Description)
		}
		logger.Printf("%d unit(s)", len(units))
	case "sensors":
		sensors, err := repo.ListSensors(0)
		if err != nil {
			logger.Fatalf("Failed to list sensors: %v", err)
		}
		for _, s := range sensors {
			logger.Printf("%-40s %s [%s]", s.Nomenclature(), s.Description, s.Units.Short)
		}
		logger.Printf("%d sensor(s)", len(sensors))
	default:
		logger.Fatalf("Unknown entity kind: %s", kind)
	}
}

func recordCommand(nomenclature, valueArg, errorArg string) {
	value, err := strconv.ParseFloat(valueArg, 64)
	if err != nil {
		logger.Fatalf("Invalid value %q: %v", valueArg, err)
	}
	uncertainty, err := strconv.ParseFloat(errorArg, 64)
	if err != nil {
		logger.Fatalf("Invalid error %q: %v", errorArg, err)
	}

	repo, _ := openRepository()

	sensor, err := repo.GetSensor(nomenclature)
	if err != nil {
		logger.Fatalf("Failed to look up sensor: %v", err)
	}
	if sensor == nil {
		logger.Fatalf("Sensor %q is not in the registry", nomenclature)
	}

	record, err := repo.RecordMeasurement(sensor, value, uncertainty)
	if err != nil {
		logger.Fatalf("Failed to record measurement: %v", err)
	}
	logger.Printf("Recorded %g ± %g %s for %s at %s",
		record.Value, record.Error, sensor.Units.Short,
		sensor.Nomenclature(), record.RecordedAt.Format(models.TimeLayout))
}

func latestCommand(nomenclature string) {
	repo, _ := openRepository()

	sensor, err := repo.GetSensor(nomenclature)
	if err != nil {
		logger.Fatalf("Failed to look up sensor: %v", err)
	}
	if sensor == nil {
		logger.Fatalf("Sensor %q is not in the registry", nomenclature)
	}

	record, err := repo.GetMostRecentRecord(sensor)
	if err != nil {
		logger.Fatalf("Failed to fetch most recent record: %v", err)
	}
	if record == nil {
		logger.Printf("Sensor %s has no records", sensor.Nomenclature())
		return
	}
	logger.Printf("%s: %g ± %g %s at %s",
		sensor.Nomenclature(), record.Value, record.Error,
		sensor.Units.Short, record.RecordedAt.Format(models.TimeLayout))
}

func exportCommand(nomenclature, startArg, endArg, outPath string) {
	start, err := time.Parse(models.TimeLayout, startArg)
	if err != nil {
		logger.Fatalf("Invalid start time %q: %v", startArg, err)
	}
	end, err := time.Parse(models.TimeLayout, endArg)
	if err != nil {
		logger.Fatalf("Invalid end time %q: %v", endArg, err)
	}

	repo, _ := openRepository()

	sensor, err := repo.GetSensor(nomenclature)
	if err != nil {
		logger.Fatalf("Failed to look up sensor: %v", err)
	}
	if sensor == nil {
		logger.Fatalf("Sensor %q is not in the registry", nomenclature)
	}

	set, err := repo.GetRecords(sensor, start, end)
	if err != nil {
		logger.Fatalf("Failed to fetch records: %v", err)
	}
	if set == nil {
		logger.Printf("No records for %s in [%s, %s]", sensor.Nomenclature(), startArg, endArg)
		return
	}

	if err := set.WriteCSV(outPath, ",", true); err != nil {
		logger.Fatalf("Failed to write CSV: %v", err)
	}
	logger.Printf("Exported %d record(s) to %s", set.N, outPath)
}

func scanCommand(directoryPath string) {
	repo, _ := openRepository()

	csvScanner := scanner.NewCSVScanner(repo)
	if err := csvScanner.ScanDirectory(directoryPath); err != nil {
		logger.Fatalf("Scan failed: %v", err)
	}

	logger.Println("Directory scan completed successfully")
}
