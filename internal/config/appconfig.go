package config

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	log "github.com/sirupsen/logrus"

	"github.com/syrilster/leave-api-e2e/internal/auth"
	"github.com/syrilster/leave-api-e2e/internal/customhttp"
	"github.com/syrilster/leave-api-e2e/internal/hrapi"
	"github.com/syrilster/leave-api-e2e/internal/report"
)

type ApplicationConfig struct {
	envValues   *envConfig
	flagValues  *flags
	hrClient    hrapi.ClientInterface
	authService *auth.Service
	mailer      *report.Mailer
}

//URL returns the HR API base URL
func (cfg *ApplicationConfig) URL() string {
	return cfg.flagValues.URL
}

//HRClient returns the HR API client
func (cfg *ApplicationConfig) HRClient() hrapi.ClientInterface {
	return cfg.hrClient
}

//AuthService returns the login service
func (cfg *ApplicationConfig) AuthService() *auth.Service {
	return cfg.authService
}

//Token returns the bearer token given on the command line or environment
func (cfg *ApplicationConfig) Token() string {
	return cfg.flagValues.Token
}

//RunTests reports whether the CRUD smoke tests were requested
func (cfg *ApplicationConfig) RunTests() bool {
	return cfg.flagValues.Test
}

//RunSeed reports whether seeding was requested
func (cfg *ApplicationConfig) RunSeed() bool {
	return cfg.flagValues.Seed
}

//SeedCount returns the number of items to seed per resource
func (cfg *ApplicationConfig) SeedCount() int {
	return cfg.flagValues.Count
}

//ReportFileLocation returns where the xlsx report is written, empty to skip it
func (cfg *ApplicationConfig) ReportFileLocation() string {
	return cfg.flagValues.Report
}

//FailOnError reports whether failures change the exit status
func (cfg *ApplicationConfig) FailOnError() bool {
	return cfg.flagValues.FailOnError
}

//Mailer returns the report mailer, nil unless EMAIL_TO and EMAIL_FROM are set
func (cfg *ApplicationConfig) Mailer() *report.Mailer {
	return cfg.mailer
}

//NewApplicationConfig loads config values from environment and args and initialises config
func NewApplicationConfig(args []string, output io.Writer) (*ApplicationConfig, error) {
	envValues := NewEnvironmentConfig()
	setLogLevel(envValues.LogLevel)

	flagValues, err := parseFlags(args, envValues, output)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(envValues.HTTPTimeoutSeconds) * time.Second
	hrClient := hrapi.NewClient(flagValues.URL, NewHTTPCommand(timeout, envValues.RateLimit))
	authService := auth.NewAuthService(flagValues.URL, flagValues.Username, flagValues.Password,
		&http.Client{Timeout: timeout}, flagValues.TokenFile)

	cfg := &ApplicationConfig{
		envValues:   envValues,
		flagValues:  flagValues,
		hrClient:    hrClient,
		authService: authService,
	}

	if envValues.EmailTo != "" && envValues.EmailFrom != "" {
		sess, err := session.NewSession(aws.NewConfig().WithRegion(envValues.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("create aws session: %w", err)
		}
		cfg.mailer = report.NewMailer(ses.New(sess), envValues.EmailTo, envValues.EmailFrom)
	}
	return cfg, nil
}

// NewHTTPCommand returns the HTTP client used for API calls. A non-positive rateLimit
// leaves requests unthrottled.
func NewHTTPCommand(timeout time.Duration, rateLimit float64) customhttp.HTTPCommand {
	httpCommand := customhttp.New(
		customhttp.WithHTTPClient(&http.Client{Timeout: timeout}),
		customhttp.WithRequestID(),
		customhttp.WithRateLimit(rateLimit, 1),
		customhttp.WithLogging(),
	).Build()

	return httpCommand
}

func setLogLevel(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithError(err).Warnf("unknown LOG_LEVEL %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
