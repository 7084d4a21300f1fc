package config

import (
	"os"
	"strconv"
)

type envConfig struct {
	LogLevel              string
	APIURL                string
	Username              string
	Password              string
	Token                 string
	AuthTokenFileLocation string
	SeedCount             int
	HTTPTimeoutSeconds    int
	RateLimit             float64
	ReportFileLocation    string
	EmailTo               string
	EmailFrom             string
	AWSRegion             string
	FailOnError           bool
}

func NewEnvironmentConfig() *envConfig {
	return &envConfig{
		LogLevel:              getEnvString("LOG_LEVEL", "INFO"),
		APIURL:                getEnvString("API_URL", "http://localhost:8000"),
		Username:              getEnvString("API_USERNAME", ""),
		Password:              getEnvString("API_PASSWORD", ""),
		Token:                 getEnvString("API_TOKEN", ""),
		AuthTokenFileLocation: getEnvString("AUTH_TOKEN_FILE_LOCATION", ""),
		SeedCount:             getEnvInt("SEED_COUNT", 50),
		HTTPTimeoutSeconds:    getEnvInt("HTTP_TIMEOUT_SECONDS", 30),
		RateLimit:             getEnvFloat("RATE_LIMIT", 0),
		ReportFileLocation:    getEnvString("REPORT_FILE_LOCATION", ""),
		EmailTo:               getEnvString("EMAIL_TO", ""),
		EmailFrom:             getEnvString("EMAIL_FROM", ""),
		AWSRegion:             getEnvString("AWS_REGION", "ap-southeast-2"),
		FailOnError:           getEnvBool("FAIL_ON_ERROR", false),
	}
}

// helper function to read an environment or return a default value
func getEnvString(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

// helper function to read an environment or return a default value
func getEnvInt(key string, defaultVal int) int {
	val, err := strconv.Atoi(getEnvString(key, strconv.Itoa(defaultVal)))
	if err == nil {
		return val
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val, err := strconv.ParseFloat(getEnvString(key, ""), 64)
	if err == nil {
		return val
	}

	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val, err := strconv.ParseBool(getEnvString(key, ""))
	if err == nil {
		return val
	}

	return defaultVal
}
