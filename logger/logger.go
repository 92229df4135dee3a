package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"slowctl/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	log     *zap.SugaredLogger
	logFile *os.File
)

// parseLevel maps the config log level onto a zap level
func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init initializes the logging system using configuration
func Init(cfg *config.Config) error {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	// Create log file path
	logPath := filepath.Join(cwd, cfg.Logging.LogFile)

	// Create or open log file
	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	level := parseLevel(cfg.Logging.LogLevel)

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	// Always log to file; mirror to the console when configured
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(logFile), level),
	}
	if cfg.Logging.LogToConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}

	log = zap.New(zapcore.NewTee(cores...)).Sugar()

	// Log session start
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	log.Infof("=== Session started at %s ===", timestamp)
	log.Infof("Log file: %s", logPath)
	log.Infof("Log level: %s", cfg.Logging.LogLevel)
	LogDivider()

	return nil
}

// Close flushes buffered entries and closes the log file
func Close() error {
	if log != nil {
		LogDivider()
		log.Infof("=== Session ended at %s ===", time.Now().Format("2006-01-02 15:04:05"))
		_ = log.Sync()
	}
	if logFile != nil {
		return logFile.Close()
	}
	return nil
}

// Printf prints formatted text at info level
func Printf(format string, v ...interface{}) {
	if log != nil {
		log.Infof(format, v...)
	} else {
		fmt.Printf(format+"\n", v...)
	}
}

// Println prints a line at info level
func Println(v ...interface{}) {
	if log != nil {
		log.Info(v...)
	} else {
		fmt.Println(v...)
	}
}

// Debugf prints formatted debug text
func Debugf(format string, v ...interface{}) {
	if log != nil {
		log.Debugf(format, v...)
	} else {
		fmt.Printf("DEBUG: "+format+"\n", v...)
	}
}

// Warnf prints formatted warning text
func Warnf(format string, v ...interface{}) {
	if log != nil {
		log.Warnf(format, v...)
	} else {
		fmt.Printf("WARN: "+format+"\n", v...)
	}
}

// Errorf prints formatted error text
func Errorf(format string, v ...interface{}) {
	if log != nil {
		log.Errorf(format, v...)
	} else {
		fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", v...)
	}
}

// Fatalf prints formatted fatal error and exits
func Fatalf(format string, v ...interface{}) {
	if log != nil {
		log.Errorf("FATAL: "+format, v...)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: "+format+"\n", v...)
	}
	Close()
	os.Exit(1)
}

// LogCommand logs the command being executed
func LogCommand(command string, args []string) {
	if len(args) > 1 {
		Printf("Command executed: %s %v", command, args[1:])
	} else {
		Printf("Command executed: %s", command)
	}
}

// LogDivider prints a divider line for better log organization
func LogDivider() {
	Println("------------------------------------------------------------")
}
