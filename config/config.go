package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Warn  LogLevel = "warn"
	Error LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("PPC_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("PPC_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("PPC_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "data"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("PPC_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "log"
	}
	return logFolderPath
}

func GetListen() string {
	return os.Getenv("PPC_LISTEN")
}

func GetPort() int {
	port, err := strconv.Atoi(os.Getenv("PPC_PORT"))
	if err != nil || port <= 0 || port > 65535 {
		return 3000
	}
	return port
}

// GetAdminUsername returns the bootstrap admin username. The matching
// password is only ever accepted pre-hashed, see GetAdminPasswordHash.
func GetAdminUsername() string {
	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	return username
}

// GetAdminPasswordHash returns the bcrypt hash used to seed the admin
// account on first run. Generate one with the hash-password subcommand.
func GetAdminPasswordHash() string {
	return os.Getenv("ADMIN_PASSWORD_HASH")
}

func GetSessionSecret() string {
	return os.Getenv("SESSION_SECRET")
}

// IsUpdateCheckEnabled reports whether the panel may call out to GitHub
// to look for a newer release. Defaults to on.
func IsUpdateCheckEnabled() bool {
	return os.Getenv("PPC_CHECK_UPDATES") != "false"
}
