// Package config provides configuration management for the folio ledger
// sync. It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	PMS    PMSConfig
	Ledger LedgerConfig
	Engine EngineConfig
	Debug  bool
}

// PMSConfig represents booking-platform API configuration.
type PMSConfig struct {
	APIKey         string
	SecretKey      string
	BaseURL        string
	TimeoutSeconds int
}

// LedgerConfig represents the target ledger store configuration.
type LedgerConfig struct {
	DBPath    string
	ChartPath string
	Document  string
	Currency  string
}

// EngineConfig represents the reconciliation engine settings.
type EngineConfig struct {
	CutoffPolicy      string
	ExactTolerance    float64
	UnderpayTolerance float64
	BalanceEpsilon    float64
	DaysBack          int
}

// Load loads configuration from environment variables. It automatically
// loads a .env file from the current directory if available; a custom
// .env path can be given.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	timeoutSeconds, err := parseIntEnv("PMS_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	exactTolerance, err := parseFloatEnv("EXACT_TOLERANCE", 0.01)
	if err != nil {
		return nil, err
	}
	underpayTolerance, err := parseFloatEnv("UNDERPAY_TOLERANCE", 10.00)
	if err != nil {
		return nil, err
	}
	balanceEpsilon, err := parseFloatEnv("BALANCE_EPSILON", 0.01)
	if err != nil {
		return nil, err
	}
	daysBack, err := parseIntEnv("DAYS_BACK", 60)
	if err != nil {
		return nil, err
	}

	config := &Config{
		PMS: PMSConfig{
			APIKey:         os.Getenv("PMS_API_KEY"),
			SecretKey:      os.Getenv("PMS_SECRET_KEY"),
			BaseURL:        os.Getenv("PMS_BASE_URL"),
			TimeoutSeconds: timeoutSeconds,
		},
		Ledger: LedgerConfig{
			DBPath:    getEnvOrDefault("LEDGER_DB_PATH", "./data/ledger.db"),
			ChartPath: getEnvOrDefault("LEDGER_CHART_PATH", "config/chart-of-accounts.yaml"),
			Document:  getEnvOrDefault("LEDGER_DOCUMENT", "113"),
			Currency:  getEnvOrDefault("LEDGER_CURRENCY", "001"),
		},
		Engine: EngineConfig{
			CutoffPolicy:      getEnvOrDefault("CUTOFF_POLICY", "noon"),
			ExactTolerance:    exactTolerance,
			UnderpayTolerance: underpayTolerance,
			BalanceEpsilon:    balanceEpsilon,
			DaysBack:          daysBack,
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration. It checks that all required
// fields are set.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "pms":
			switch path[1] {
			case "apiKey":
				value = c.PMS.APIKey
			case "secretKey":
				value = c.PMS.SecretKey
			case "baseUrl":
				value = c.PMS.BaseURL
			}
		case "ledger":
			switch path[1] {
			case "dbPath":
				value = c.Ledger.DBPath
			case "chartPath":
				value = c.Ledger.ChartPath
			case "document":
				value = c.Ledger.Document
			case "currency":
				value = c.Ledger.Currency
			}
		}

		if value == "" {
			missing = append(missing, joinPath(path))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	if c.Engine.ExactTolerance >= c.Engine.UnderpayTolerance {
		return fmt.Errorf("EXACT_TOLERANCE (%.2f) must be smaller than UNDERPAY_TOLERANCE (%.2f)",
			c.Engine.ExactTolerance, c.Engine.UnderpayTolerance)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a
// default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an int from an environment variable, returning
// defaultValue if it is not set.
func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	return parsed, nil
}

// parseFloatEnv parses a float64 from an environment variable, returning
// defaultValue if it is not set.
func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value for %s: %s", key, value)
	}
	return parsed, nil
}

// joinPath joins a path slice into a dot-separated string.
func joinPath(path []string) string {
	result := ""
	for i, p := range path {
		if i > 0 {
			result += "."
		}
		result += p
	}
	return result
}
