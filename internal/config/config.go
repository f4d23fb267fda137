package config // package config loads application configuration from environment variables

import (
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Unlike a classic server config, most keys here
// are NOT enforced at startup: the webhook handlers validate the settings
// they need per invocation and report a "configuration missing" error to the
// caller, so the process can boot and answer health checks with a partial
// environment.
type Config struct {
    Env                string // application environment (e.g. "dev", "prod")
    Port               string // HTTP port to listen on
    ExternalWebhookURL string // auth broker endpoint that exchanges a facility id for session cookies
    FacilityID         string // facility (tenant) identifier scoping portal data
    DBUser             string // database username
    DBPass             string // database password (optional)
    DBHost             string // database host address
    DBPort             string // database port number
    DBName             string // database name
    HTTPTimeoutSec     int    // timeout for outbound portal calls, in seconds
    DBTimeoutSec       int    // timeout for each upsert transaction, in seconds
}

// Load reads configuration values from environment variables and returns a
// Config.  Every key is optional at load time; getenv() supplies defaults
// where one makes sense and the empty string otherwise.  Handlers own the
// decision of which keys are required for which operation.
func Load() Config {
    return Config{
        Env:                getenv("APP_ENV", "dev"),          // environment (dev/test/prod)
        Port:               getenv("APP_PORT", "8080"),        // port to bind the HTTP server
        ExternalWebhookURL: os.Getenv("EXTERNAL_WEBHOOK_URL"), // auth broker URL (validated per invocation)
        FacilityID:         os.Getenv("FACILITY_ID"),          // facility identifier (validated per invocation)
        DBUser:             os.Getenv("DB_USER"),              // database user
        DBPass:             os.Getenv("DB_PASS"),              // database password (empty allowed)
        DBHost:             os.Getenv("DB_HOST"),              // database host
        DBPort:             getenv("DB_PORT", "3306"),         // database port
        DBName:             os.Getenv("DB_NAME"),              // database name
        HTTPTimeoutSec:     getint("HTTP_TIMEOUT_SEC", 30),    // outbound HTTP deadline
        DBTimeoutSec:       getint("DB_TIMEOUT_SEC", 10),      // per-transaction deadline
    }
}

// DBConfigured reports whether enough settings are present to open the
// database pool.  DB_PASS is deliberately excluded: passwordless local
// setups are allowed by the MySQL DSN builder in internal/database.
func (c Config) DBConfigured() bool {
    return c.DBUser != "" && c.DBHost != "" && c.DBName != ""
}

// getenv retrieves an environment variable, falling back to def when the
// variable is unset or empty.
func getenv(key, def string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        return def
    }
    return v
}

// getint is like getenv() but converts the retrieved string into an
// integer.  Unparseable values fall back to the default rather than
// aborting the process.
func getint(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        return def
    }
    return n
}
