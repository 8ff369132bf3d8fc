package api

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/ssnnd0/Saxon-Scout/logging"
)

type Config struct {
	StorageConfig
	ServerConfig
	AuthConfig
	BackupConfig
}

type StorageConfig struct {
	DatabasePath string
}

type ServerConfig struct {
	Port    int
	GinMode string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTLHours int
}

type BackupConfig struct {
	BackupEnabled bool
	BackupCron    string
	BackupDir     string
}

var settingsOnce sync.Once

func ReadConfig() *Config {
	conf := &Config{
		StorageConfig: StorageConfig{
			DatabasePath: getStringOrDefault("storage.DatabasePath", "data/scouting.db"),
		},
		ServerConfig: ServerConfig{
			Port:    getIntOrDefault("server.port", 8080),
			GinMode: getStringOrDefault("server.ginMode", "release"),
		},
		AuthConfig: AuthConfig{
			JWTSecret:     getString("auth.JWTSecret"),
			TokenTTLHours: getIntOrDefault("auth.TokenTTLHours", 24*7),
		},
		BackupConfig: BackupConfig{
			BackupEnabled: getBoolOrDefault("backup.Enabled", false),
			BackupCron:    getStringOrDefault("backup.Cron", "0 2 * * *"),
			BackupDir:     getStringOrDefault("backup.Dir", "data/backups"),
		},
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}

func getString(name string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Fatalf("required environment variable '%s' is missing", name)
	return ""
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getBoolOrDefault(name string, def bool) bool {
	if viper.IsSet(name) {
		v := viper.GetBool(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getStringOrDefault(name string, def string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
