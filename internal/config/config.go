package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting list values
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Defaults applied when the matching environment variable is unset
const (
	DefaultAppPort          = "8080"
	DefaultCacheTTL         = 300 * time.Second
	DefaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	DefaultCoinGeckoTimeout = 10 * time.Second
	DefaultBcryptCost       = 10
)

// Config holds the application configuration
type Config struct {
	AppPort           string        // Application port
	DBUser            string        // Database user
	DBPassword        string        // Database password
	DBHost            string        // Database host
	DBPort            string        // Database port
	DBName            string        // Database name
	RedisAddr         string        // Redis server address
	RedisPass         string        // Redis password
	RedisDB           int           // Redis database number
	IsProd            bool          // Is production environment
	LogLevel          string        // Logrus level name
	CacheTTL          time.Duration // TTL of cached net worth and symbol entries
	CoinGeckoBaseURL  string        // Price provider base URL
	CoinGeckoAPIKey   string        // Optional demo API key
	CoinGeckoTimeout  time.Duration // Timeout of a single provider request
	StrictSymbolCheck bool          // Report provider failures instead of "symbol not found"
	BcryptCost        int           // Cost used to hash API keys
	CORSOrigins       []string      // Allowed CORS origins, empty disables CORS
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:           getEnv("APP_PORT", DefaultAppPort),                               // Application port
		DBUser:            os.Getenv("DB_USER"),                                             // Database user
		DBPassword:        os.Getenv("DB_PASSWORD"),                                         // Database password
		DBHost:            os.Getenv("DB_HOST"),                                             // Database host
		DBPort:            os.Getenv("DB_PORT"),                                             // Database port
		DBName:            os.Getenv("DB_NAME"),                                             // Database name
		RedisAddr:         os.Getenv("REDIS_ADDR"),                                          // Redis server address
		RedisPass:         os.Getenv("REDIS_PASS"),                                          // Redis password
		RedisDB:           redisDB,                                                          // Redis database number
		IsProd:            os.Getenv("IS_PROD") == "true",                                   // Is production environment
		LogLevel:          getEnv("LOG_LEVEL", "info"),                                      // Log level
		CacheTTL:          getSeconds("CACHE_TTL_SECONDS", DefaultCacheTTL),                 // Cache TTL
		CoinGeckoBaseURL:  getEnv("COINGECKO_BASE_URL", DefaultCoinGeckoBaseURL),            // Price provider URL
		CoinGeckoAPIKey:   os.Getenv("COINGECKO_API_KEY"),                                   // Price provider key
		CoinGeckoTimeout:  getSeconds("COINGECKO_TIMEOUT_SECONDS", DefaultCoinGeckoTimeout), // Price provider timeout
		StrictSymbolCheck: os.Getenv("STRICT_SYMBOL_CHECK") == "true",                       // Strict symbol validation
		BcryptCost:        getInt("APIKEY_BCRYPT_COST", DefaultBcryptCost),                  // API key hashing cost
		CORSOrigins:       splitList(os.Getenv("CORS_ORIGINS")),                             // CORS origins
	}
}

// DSN returns the MySQL Data Source Name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// getSeconds reads a whole number of seconds, falling back on missing or non-positive values
func getSeconds(key string, fallback time.Duration) time.Duration {
	n := getInt(key, 0)
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
