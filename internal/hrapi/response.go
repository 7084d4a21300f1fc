package hrapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/syrilster/leave-api-e2e/internal/model"
)

// Response is an HR API answer. Any status is a valid Response; callers decide which
// codes count as success.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

var (
	StatusOK        = []int{http.StatusOK}
	StatusCreated   = []int{http.StatusOK, http.StatusCreated}
	StatusNoContent = []int{http.StatusOK, http.StatusNoContent}
)

// HasStatus reports whether the status code is one of codes
func (r *Response) HasStatus(codes ...int) bool {
	for _, c := range codes {
		if r.StatusCode == c {
			return true
		}
	}
	return false
}

func (r *Response) Text() string {
	return string(r.Body)
}

// Record decodes the body as a single JSON object
func (r *Response) Record() (model.Record, error) {
	var rec model.Record
	if err := json.Unmarshal(r.Body, &rec); err != nil {
		return model.Record{}, fmt.Errorf("there was an error un marshalling the HR API resp. cause: %w", err)
	}
	return rec, nil
}

// Records decodes the body as a JSON array of objects
func (r *Response) Records() ([]model.Record, error) {
	var recs []model.Record
	if err := json.Unmarshal(r.Body, &recs); err != nil {
		return nil, fmt.Errorf("there was an error un marshalling the HR API resp. cause: %w", err)
	}
	return recs, nil
}

// Decode unmarshals the body into v
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("there was an error un marshalling the HR API resp. cause: %w", err)
	}
	return nil
}
