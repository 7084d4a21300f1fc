package internal

import (
	"context"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/syrilster/leave-api-e2e/internal/auth"
	"github.com/syrilster/leave-api-e2e/internal/hrapi"
	"github.com/syrilster/leave-api-e2e/internal/report"
	"github.com/syrilster/leave-api-e2e/internal/resource"
)

type AppConfig interface {
	HRClient() hrapi.ClientInterface
	AuthService() *auth.Service
	Token() string
	RunTests() bool
	RunSeed() bool
	SeedCount() int
	ReportFileLocation() string
	FailOnError() bool
	Mailer() *report.Mailer
}

// Run authenticates, runs the requested tests and seeding, then publishes the report.
// It returns the process exit status.
func Run(ctx context.Context, cfg AppConfig, out io.Writer) int {
	contextLogger := log.WithContext(ctx)

	token, ok := authenticate(ctx, cfg.AuthService(), cfg.Token(), out)
	if !ok {
		return 1
	}
	client := cfg.HRClient()
	client.SetToken(token)

	if !cfg.RunTests() && !cfg.RunSeed() {
		fmt.Fprintln(out, "Nothing to do, pass --test and/or --seed")
		return 0
	}

	rep := report.New()
	service := NewService(client, resource.NewFaker(0), out, rep)
	if cfg.RunTests() {
		service.RunTests(ctx)
	}
	if cfg.RunSeed() {
		if err := service.Seed(ctx, cfg.SeedCount()); err != nil {
			contextLogger.WithError(err).Error("seeding stopped early")
		}
	}

	fmt.Fprintf(out, "\n%s", rep.Summary())
	publish(ctx, cfg, rep, out)

	if cfg.FailOnError() && rep.Failed() {
		return 1
	}
	return 0
}

// authenticate picks the token given on the command line, then a password login,
// then the token cached by an earlier login.
func authenticate(ctx context.Context, authService *auth.Service, token string, out io.Writer) (*oauth2.Token, bool) {
	contextLogger := log.WithContext(ctx)

	if token != "" {
		fmt.Fprintln(out, "✅ Using provided token")
		return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, true
	}

	if authService.HasPassword() {
		t, err := authService.Login(ctx)
		if err != nil {
			fmt.Fprintf(out, "❌ Login failed: %v\n", err)
			return nil, false
		}
		fmt.Fprintf(out, "✅ Login successful for %s\n", authService.Username())
		if err := authService.SaveToken(ctx, t); err != nil {
			contextLogger.WithError(err).Warn("could not cache the access token")
		}
		return t, true
	}

	t, err := authService.LoadToken(ctx)
	if err == nil {
		fmt.Fprintln(out, "✅ Using cached token")
		return t, true
	}
	if !errors.Is(err, auth.ErrNoCachedToken) {
		contextLogger.WithError(err).Warn("ignoring unreadable token file")
	}
	fmt.Fprintln(out, "❌ Either --password or --token must be provided")
	return nil, false
}

// publish writes the workbook and mails the report when configured. Mail still goes
// out after ctx is cancelled.
func publish(ctx context.Context, cfg AppConfig, rep *report.Report, out io.Writer) {
	contextLogger := log.WithContext(ctx)

	var attachment string
	if path := cfg.ReportFileLocation(); path != "" {
		if err := rep.WriteWorkbook(ctx, path); err != nil {
			contextLogger.WithError(err).Errorf("could not write report to %s", path)
		} else {
			attachment = path
			fmt.Fprintf(out, "📄 Report written to %s\n", path)
		}
	}

	if mailer := cfg.Mailer(); mailer != nil {
		if err := mailer.Send(context.WithoutCancel(ctx), rep, attachment); err != nil {
			contextLogger.WithError(err).Error("could not email the report")
		}
	}
}
