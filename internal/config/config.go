package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

// OneTab's Chrome Web Store extension ID; storage for the extension lives
// in a LevelDB directory named after it inside the browser profile.
const extensionID = "chphlpgkkbolifaimnlloiipkdnihall"

// Config holds all configuration shared by the scanner and reconstructor.
type Config struct {
	// StoreDir is the extension's LevelDB directory inside the browser profile.
	StoreDir string

	// Scanner output paths
	OutputJSON string
	OutputHTML string

	// Reconstructor paths
	StateFile string
	BackupDir string

	// CDP endpoint used only for the advisory browser-running probe
	CDPAddress string
	CDPPort    int
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		StoreDir:   getEnvOrDefault("ONETAB_STORE_DIR", DefaultStoreDir()),
		OutputJSON: getEnvOrDefault("ONETAB_OUTPUT_JSON", "onetab_urls.json"),
		OutputHTML: getEnvOrDefault("ONETAB_OUTPUT_HTML", "onetab_bookmarks.html"),
		StateFile:  getEnvOrDefault("ONETAB_STATE_FILE", "onetab_state.json"),
		BackupDir:  getEnvOrDefault("ONETAB_BACKUP_DIR", "./backup"),
		CDPAddress: getEnvOrDefault("ONETAB_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:    getEnvIntOrDefault("ONETAB_CDP_PORT", 9222),
	}

	return cfg, nil
}

// DefaultStoreDir returns the platform default location of the extension's
// storage directory inside the Chrome profile.
func DefaultStoreDir() string {
	var profileRoot string
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		profileRoot = filepath.Join(home, "Library", "Application Support", "Google", "Chrome")
	case "windows":
		profileRoot = filepath.Join(os.Getenv("LOCALAPPDATA"), "Google", "Chrome", "User Data")
	default:
		home, _ := os.UserHomeDir()
		profileRoot = filepath.Join(home, ".config", "google-chrome")
	}
	return filepath.Join(profileRoot, "Default", "Local Extension Settings", extensionID)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
