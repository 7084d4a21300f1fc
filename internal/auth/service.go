package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/syrilster/leave-api-e2e/internal/model"
)

const (
	filePerm = 0600

	loginPath = "/api/auth/login"
)

// ErrNoCachedToken is returned by LoadToken when no token file is configured or present
var ErrNoCachedToken = errors.New("no cached token")

// StatusError is a login attempt answered with a non-200 status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d - %s", e.StatusCode, e.Body)
}

type Service struct {
	baseURL          string
	username         string
	password         string
	httpClient       *http.Client
	AuthTokenFileLoc string
}

func NewAuthService(baseURL string, username string, password string, httpClient *http.Client, authFileLoc string) *Service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Service{
		baseURL:          strings.TrimRight(baseURL, "/"),
		username:         username,
		password:         password,
		httpClient:       httpClient,
		AuthTokenFileLoc: authFileLoc,
	}
}

func (service Service) Username() string {
	return service.username
}

func (service Service) HasPassword() bool {
	return service.password != ""
}

// Login posts the credentials as form data and, if that is refused, once more as JSON.
func (service Service) Login(ctx context.Context) (*oauth2.Token, error) {
	ctxLogger := log.WithContext(ctx)

	token, err := service.formLogin(ctx)
	if err == nil {
		return token, nil
	}

	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		ctxLogger.WithError(err).Error("could not send form login request")
		return nil, err
	}

	status := 0
	if retrieveErr.Response != nil {
		status = retrieveErr.Response.StatusCode
	}
	ctxLogger.Infof("form login returned status %d, retrying with JSON body", status)
	return service.jsonLogin(ctx)
}

func (service Service) formLogin(ctx context.Context) (*oauth2.Token, error) {
	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  service.baseURL + loginPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, service.httpClient)
	return conf.PasswordCredentialsToken(ctx, service.username, service.password)
}

func (service Service) jsonLogin(ctx context.Context) (*oauth2.Token, error) {
	ctxLogger := log.WithContext(ctx)

	payload, err := json.Marshal(map[string]string{
		"username": service.username,
		"password": service.password,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, service.baseURL+loginPath, bytes.NewReader(payload))
	if err != nil {
		ctxLogger.WithError(err).Error("could not create HTTP request")
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("accept", "application/json")

	res, err := service.httpClient.Do(req)
	if err != nil {
		ctxLogger.WithError(err).Error("could not send HTTP request")
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		ctxLogger.Infof("status returned from auth service is %s", res.Status)
		return nil, &StatusError{StatusCode: res.StatusCode, Body: string(body)}
	}

	var resp model.LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		ctxLogger.WithError(err).Error("could not parse JSON response")
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("login response missing access_token")
	}

	return &oauth2.Token{AccessToken: resp.AccessToken, TokenType: resp.TokenType}, nil
}

// SaveToken writes the token to the configured token file. Without a location it does nothing.
func (service Service) SaveToken(ctx context.Context, token *oauth2.Token) error {
	if service.AuthTokenFileLoc == "" {
		return nil
	}
	ctxLogger := log.WithContext(ctx)

	file, err := json.MarshalIndent(model.LoginResponse{AccessToken: token.AccessToken, TokenType: token.TokenType}, "", " ")
	if err != nil {
		ctxLogger.WithError(err).Error("Error preparing the json to write to file")
		return err
	}

	if err := os.WriteFile(service.AuthTokenFileLoc, file, filePerm); err != nil {
		ctxLogger.WithError(err).Error("Error writing token to file")
		return err
	}
	return nil
}

// LoadToken reads a token saved by SaveToken
func (service Service) LoadToken(ctx context.Context) (*oauth2.Token, error) {
	if service.AuthTokenFileLoc == "" {
		return nil, ErrNoCachedToken
	}
	ctxLogger := log.WithContext(ctx)

	sessionFile, err := os.ReadFile(service.AuthTokenFileLoc)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoCachedToken
	}
	if err != nil {
		ctxLogger.WithError(err).Errorf("error reading json file containing access token")
		return nil, err
	}

	var data model.LoginResponse
	if err := json.Unmarshal(sessionFile, &data); err != nil {
		ctxLogger.WithError(err).Errorf("error un marshalling json file containing access token")
		return nil, err
	}
	if data.AccessToken == "" {
		return nil, ErrNoCachedToken
	}
	return &oauth2.Token{AccessToken: data.AccessToken, TokenType: data.TokenType}, nil
}
