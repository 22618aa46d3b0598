package cli

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/tiendify/tiendify/internal/auth"
	"github.com/tiendify/tiendify/internal/store"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from --data-dir flag,
// TIENDIFY_DATA_DIR env var, or ~/.tiendify as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("TIENDIFY_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return home + "/.tiendify"
}

// openStore opens the shop database from config. The default is SQLite in
// the data directory; database.driver=postgres switches to the configured
// DSN.
func openStore() (*store.Store, error) {
	driver := viper.GetString("database.driver")
	if driver == "" || driver == "sqlite" {
		return store.Open("sqlite", resolveDataDir())
	}
	return store.Open(driver, viper.GetString("database.dsn"))
}

// newHasher builds the secret hasher from config, falling back to the
// default bcrypt cost.
func newHasher() *auth.Hasher {
	return auth.NewHasher(viper.GetInt("auth.bcrypt_cost"))
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
