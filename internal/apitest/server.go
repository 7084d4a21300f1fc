// Package apitest provides an in-memory HR API that speaks the same wire contract as
// the real service, for exercising the client end to end in tests.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/syrilster/leave-api-e2e/internal/model"
)

const (
	Accounts        = "accounts"
	EmploymentTypes = "employment-types"
	LeaveTypes      = "leave-types"
	LeaveTypeRules  = "leave-type-rules"

	apiPrefix = "/api/v1"
)

var idFields = map[string]string{
	Accounts:        "AccountId",
	EmploymentTypes: "EmploymentTypeId",
	LeaveTypes:      "LeaveTypeId",
	LeaveTypeRules:  "LeaveTypeRuleId",
}

// parents lists the foreign keys each collection must reference
var parents = map[string]map[string]string{
	EmploymentTypes: {"AccountId": Accounts},
	LeaveTypes:      {"AccountId": Accounts},
	LeaveTypeRules:  {"AccountId": Accounts, "LeaveTypeId": LeaveTypes, "EmploymentTypeId": EmploymentTypes},
}

type collection struct {
	idField string
	order   []string
	records map[string]*model.Record
}

type Server struct {
	*httptest.Server

	Username string
	Password string
	Token    string

	mu                sync.Mutex
	collections       map[string]*collection
	failures          map[string]*failure
	rejectFormLogin   bool
	softDelete        bool
	strictRuleAccount bool
	logWriter         io.WriteCloser
}

type Option func(s *Server)

// WithCredentials sets the username and password the login endpoint accepts
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.Username = username
		s.Password = password
	}
}

// RejectFormLogin makes the login endpoint refuse form bodies, accepting only JSON
func RejectFormLogin() Option {
	return func(s *Server) { s.rejectFormLogin = true }
}

// SoftDelete keeps deleted records readable with IsDeleted set
func SoftDelete() Option {
	return func(s *Server) { s.softDelete = true }
}

// StrictRuleAccount rejects leave type rules whose AccountId differs from their leave type's
func StrictRuleAccount() Option {
	return func(s *Server) { s.strictRuleAccount = true }
}

func NewServer(options ...Option) *Server {
	s := &Server{
		Username:    "admin@example.com",
		Password:    "secret",
		Token:       uuid.NewString(),
		collections: make(map[string]*collection),
		failures:    make(map[string]*failure),
	}
	for name, idField := range idFields {
		s.collections[name] = &collection{idField: idField, records: make(map[string]*model.Record)}
	}
	for _, opt := range options {
		opt(s)
	}

	router := mux.NewRouter()
	router.Use(s.failureInjection)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "All OK")
	}).Methods(http.MethodGet).Name("health")
	router.HandleFunc("/api/auth/login", s.login).Methods(http.MethodPost).Name("login")

	api := router.PathPrefix(apiPrefix).Subrouter()
	api.Use(s.requireToken)
	for name := range idFields {
		s.withRoutes(api, name)
	}

	s.logWriter = log.StandardLogger().WriterLevel(log.DebugLevel)
	handler := handlers.RecoveryHandler(handlers.RecoveryLogger(log.StandardLogger()))(
		handlers.LoggingHandler(s.logWriter, router))
	s.Server = httptest.NewServer(handler)
	return s
}

func (s *Server) Close() {
	s.Server.Close()
	_ = s.logWriter.Close()
}

// FailOn answers every request to the named route with status. Route names are
// "login" or "<collection>.<op>" with op one of meta, list, batch, create, get, update, delete.
func (s *Server) FailOn(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = &failure{status: status, every: 1}
}

// FailEvery answers every n-th request to the named route with status and serves the others
func (s *Server) FailEvery(route string, n int, status int) {
	if n < 1 {
		n = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = &failure{status: status, every: n}
}

type failure struct {
	status int
	every  int
	seen   int
}

func (f *failure) next() bool {
	f.seen++
	return f.seen%f.every == 0
}

// Records returns the stored records of a collection in creation order
func (s *Server) Records(name string) []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collections[name]
	out := make([]model.Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.records[id])
	}
	return out
}

func (s *Server) withRoutes(api *mux.Router, name string) {
	base := "/" + name + "/"
	api.HandleFunc(base+"meta", s.meta(name)).Methods(http.MethodGet).Name(name + ".meta")
	api.HandleFunc(base, s.list(name)).Methods(http.MethodGet).Name(name + ".list")
	if name == Accounts {
		api.HandleFunc(base+"batch", s.batch(name)).Methods(http.MethodGet).Name(name + ".batch")
	}
	api.HandleFunc(base, s.create(name)).Methods(http.MethodPost).Name(name + ".create")
	api.HandleFunc(base+"{id}", s.get(name)).Methods(http.MethodGet).Name(name + ".get")
	api.HandleFunc(base+"{id}", s.update(name)).Methods(http.MethodPut).Name(name + ".update")
	api.HandleFunc(base+"{id}", s.remove(name)).Methods(http.MethodDelete).Name(name + ".delete")
}

func (s *Server) failureInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if route := mux.CurrentRoute(r); route != nil {
			s.mu.Lock()
			f, ok := s.failures[route.GetName()]
			fail := ok && f.next()
			s.mu.Unlock()
			if fail {
				writeDetail(w, f.status, "injected failure")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.Token {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var username, password string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if s.rejectFormLogin {
			writeDetail(w, http.StatusUnprocessableEntity, "form login not supported")
			return
		}
		if err := r.ParseForm(); err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		username, password = r.PostForm.Get("username"), r.PostForm.Get("password")
	} else {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		username, password = body["username"], body["password"]
	}

	if username != s.Username || password != s.Password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, model.LoginResponse{AccessToken: s.Token, TokenType: "bearer"})
}

func (s *Server) meta(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields := []model.MetaField{
			{Name: idFields[name], DisplayName: "Id", Type: "string", Order: 0},
			{Name: "Name", DisplayName: "Name", Type: "string", Required: true, Order: 1},
			{Name: "Code", DisplayName: "Code", Type: "string", Required: true, Order: 2},
		}
		order := 3
		for fk := range parents[name] {
			fields = append(fields, model.MetaField{Name: fk, DisplayName: fk, Type: "string", Required: true, Order: order})
			order++
		}
		writeJSON(w, http.StatusOK, model.Meta{Fields: fields})
	}
}

func (s *Server) list(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out []model.Record
		for _, rec := range s.Records(name) {
			if !rec.Bool("IsDeleted") {
				out = append(out, rec)
			}
		}
		if out == nil {
			out = []model.Record{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) batch(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query()["ids"]
		if len(ids) == 0 {
			writeDetail(w, http.StatusUnprocessableEntity, "ids is required")
			return
		}

		s.mu.Lock()
		c := s.collections[name]
		out := []model.Record{}
		for _, id := range ids {
			if rec, ok := c.records[id]; ok {
				out = append(out, *rec)
			}
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) create(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.Record
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if detail := s.validate(name, payload, ""); detail != "" {
			writeDetail(w, http.StatusUnprocessableEntity, detail)
			return
		}

		c := s.collections[name]
		id := uuid.NewString()
		rec := model.NewRecord(c.idField, id)
		for _, k := range payload.Keys() {
			if k == c.idField {
				continue
			}
			v, _ := payload.Get(k)
			rec.Set(k, v)
		}
		if _, ok := rec.Get("IsActive"); !ok {
			rec.Set("IsActive", true)
		}
		rec.Set("IsDeleted", false)
		rec.Set("CreatedAt", time.Now().UTC().Format(time.RFC3339))

		c.order = append(c.order, id)
		c.records[id] = &rec
		writeJSON(w, http.StatusCreated, rec)
	}
}

func (s *Server) get(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		rec, ok := s.collections[name].records[mux.Vars(r)["id"]]
		s.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusNotFound, "Not found")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) update(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.Record
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		id := mux.Vars(r)["id"]
		c := s.collections[name]
		rec, ok := c.records[id]
		if !ok || rec.Bool("IsDeleted") {
			writeDetail(w, http.StatusNotFound, "Not found")
			return
		}
		if detail := s.validate(name, payload, id); detail != "" {
			writeDetail(w, http.StatusUnprocessableEntity, detail)
			return
		}

		for _, k := range payload.Keys() {
			if k == c.idField {
				continue
			}
			v, _ := payload.Get(k)
			rec.Set(k, v)
		}
		rec.Set("ModifiedOn", time.Now().UTC().Format(time.RFC3339))
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) remove(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		id := mux.Vars(r)["id"]
		c := s.collections[name]
		rec, ok := c.records[id]
		if !ok || rec.Bool("IsDeleted") {
			writeDetail(w, http.StatusNotFound, "Not found")
			return
		}

		if s.softDelete {
			rec.Set("IsDeleted", true)
		} else {
			delete(c.records, id)
			for i, v := range c.order {
				if v == id {
					c.order = append(c.order[:i], c.order[i+1:]...)
					break
				}
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// validate checks required fields, code uniqueness and foreign keys. Callers hold s.mu.
func (s *Server) validate(name string, payload model.Record, selfID string) string {
	for _, field := range []string{"Name", "Code"} {
		if v, ok := payload.Get(field); !ok || v == "" {
			return field + " is required"
		}
	}

	code, _ := payload.Get("Code")
	for id, rec := range s.collections[name].records {
		if existing, _ := rec.Get("Code"); id != selfID && existing == code && !rec.Bool("IsDeleted") {
			return "Code already exists"
		}
	}

	for field, parent := range parents[name] {
		ref, ok := payload.Get(field)
		if !ok {
			return field + " is required"
		}
		refID, _ := ref.(string)
		if _, exists := s.collections[parent].records[refID]; !exists {
			return field + " does not reference an existing record"
		}
	}

	if name == LeaveTypeRules && s.strictRuleAccount {
		accountID, _ := payload.Get("AccountId")
		leaveTypeID, _ := payload.Get("LeaveTypeId")
		leaveType := s.collections[LeaveTypes].records[leaveTypeID.(string)]
		if owner, _ := leaveType.Get("AccountId"); owner != accountID {
			return "AccountId does not match the leave type's account"
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("could not write response body")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
