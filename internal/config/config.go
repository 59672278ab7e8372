// Package config loads clinicmap settings from .env files, the environment,
// and an optional .clinicmap.yaml, and exposes them as an explicit value that
// is passed into every operation.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingToken is returned when a command needs the Airtable credential but none is configured
var ErrMissingToken = errors.New("AIRTABLE_TOKEN is not set (add it to .env or the environment)")

// Production Airtable identifiers
const (
	DefaultBaseID       = "app2GMlVxnjw6ifzz"
	DefaultClinicsTable = "tblx7sVpDo17Hkmmr"
	DefaultHoursTable   = "tblp2gxzk6xGeDtnI"
)

// Config holds everything an operation needs to reach the remote store and
// the enrichment sources.
type Config struct {
	AirtableToken   string
	AirtableBaseURL string
	BaseID          string
	ClinicsTable    string
	HoursTable      string

	GeosearchURL string
	SubwayURL    string
	BusURL       string

	DatasetPath        string
	VirtualDatasetPath string

	DatabaseURL string
	RedisURL    string
	Port        string

	// Pauses between serial remote calls
	WriteDelay   time.Duration
	GeocodeDelay time.Duration

	LogLevel  string
	LogFormat string
	LogOutput string
}

// Load reads configuration in order of precedence:
// 1. Environment variables
// 2. .env.local, then .env
// 3. Config file (.clinicmap.yaml in the working or home directory, or configFile)
// 4. Defaults
func Load(configFile string) (*Config, error) {
	v := viper.New()
	loadEnvFiles()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".clinicmap")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return &Config{
		AirtableToken:   v.GetString("airtable_token"),
		AirtableBaseURL: v.GetString("airtable_base_url"),
		BaseID:          v.GetString("airtable_base_id"),
		ClinicsTable:    v.GetString("airtable_clinics_table"),
		HoursTable:      v.GetString("airtable_hours_table"),

		GeosearchURL: v.GetString("geosearch_url"),
		SubwayURL:    v.GetString("subway_url"),
		BusURL:       v.GetString("bus_url"),

		DatasetPath:        v.GetString("dataset_path"),
		VirtualDatasetPath: v.GetString("virtual_dataset_path"),

		DatabaseURL: v.GetString("database_url"),
		RedisURL:    v.GetString("redis_url"),
		Port:        v.GetString("port"),

		WriteDelay:   v.GetDuration("airtable_write_delay"),
		GeocodeDelay: v.GetDuration("geocode_delay"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}, nil
}

// RequireToken returns ErrMissingToken when no Airtable credential is configured
func (c *Config) RequireToken() error {
	if strings.TrimSpace(c.AirtableToken) == "" {
		return ErrMissingToken
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("airtable_base_url", "https://api.airtable.com/v0")
	v.SetDefault("airtable_base_id", DefaultBaseID)
	v.SetDefault("airtable_clinics_table", DefaultClinicsTable)
	v.SetDefault("airtable_hours_table", DefaultHoursTable)
	v.SetDefault("geosearch_url", "https://geosearch.planninglabs.nyc/v2/search")
	v.SetDefault("subway_url", "https://data.ny.gov/resource/39hk-dx4f.json")
	v.SetDefault("bus_url", "https://data.ny.gov/resource/2ucp-7wg5.json")
	v.SetDefault("dataset_path", "public/clinics.geojson")
	v.SetDefault("virtual_dataset_path", "public/virtual_clinics.json")
	v.SetDefault("port", "8080")
	v.SetDefault("airtable_write_delay", 250*time.Millisecond)
	v.SetDefault("geocode_delay", 100*time.Millisecond)
	v.SetDefault("log_level", "")
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
	v.SetDefault("airtable_token", "")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
}

// loadEnvFiles loads .env files without overriding variables already set.
// .env.local is loaded first so its values win over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
