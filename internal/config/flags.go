package config

import (
	"errors"
	"flag"
	"io"
	"strings"
)

// flags holds the command line options, defaulted from the environment
type flags struct {
	URL         string
	Username    string
	Password    string
	Token       string
	TokenFile   string
	Test        bool
	Seed        bool
	Count       int
	Report      string
	FailOnError bool
}

// parseFlags parses args over env defaults. Usage and parse errors go to output.
func parseFlags(args []string, env *envConfig, output io.Writer) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("leave-api-e2e", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&f.URL, "url", env.APIURL, "Base URL of the HR API")
	fs.StringVar(&f.Username, "username", env.Username, "Login username")
	fs.StringVar(&f.Password, "password", env.Password, "Login password")
	fs.StringVar(&f.Token, "token", env.Token, "Bearer token, skips login")
	fs.StringVar(&f.TokenFile, "token-file", env.AuthTokenFileLocation, "File caching the access token between runs")
	fs.BoolVar(&f.Test, "test", false, "Run the CRUD smoke tests")
	fs.BoolVar(&f.Seed, "seed", false, "Seed sample data")
	fs.IntVar(&f.Count, "count", env.SeedCount, "Number of items to seed per resource")
	fs.StringVar(&f.Report, "report", env.ReportFileLocation, "Write an xlsx run report to this path")
	fs.BoolVar(&f.FailOnError, "fail-on-error", env.FailOnError, "Exit with status 1 when any step or seed item fails")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, errors.New("unexpected arguments: " + strings.Join(fs.Args(), " "))
	}
	if f.Seed && f.Count < 0 {
		return nil, errors.New("--count must not be negative")
	}
	return f, nil
}
