package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/syrilster/leave-api-e2e/internal/hrapi"
	"github.com/syrilster/leave-api-e2e/internal/model"
	"github.com/syrilster/leave-api-e2e/internal/report"
)

const batchSize = 3

// StatusError is an API answer outside the expected status codes
type StatusError struct {
	Request    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %d - %s", e.Request, e.StatusCode, e.Body)
}

// MissingIDError is a successful create whose response carries no usable id
type MissingIDError struct {
	Keys []string
}

func (e *MissingIDError) Error() string {
	return fmt.Sprintf("ID not found in response. Keys: [%s]", strings.Join(e.Keys, ", "))
}

// Create posts a generated payload for r and returns the id of the created record.
func Create(ctx context.Context, c hrapi.ClientInterface, r Resource) (model.ID, *hrapi.Response, error) {
	resp, err := c.Post(ctx, r.Endpoint(), r.GeneratePayload())
	if err != nil {
		return model.ID{}, nil, err
	}
	if !resp.HasStatus(hrapi.StatusCreated...) {
		return model.ID{}, resp, &StatusError{Request: "POST " + r.Endpoint(), StatusCode: resp.StatusCode, Body: resp.Text()}
	}

	rec, err := resp.Record()
	if err != nil {
		return model.ID{}, resp, err
	}
	id, _, ok := rec.ID(r.IDField())
	if !ok || id.IsZero() {
		return model.ID{}, resp, &MissingIDError{Keys: rec.Keys()}
	}
	return id, resp, nil
}

// Recorder receives the outcome of every step
type Recorder interface {
	Record(step report.StepResult)
}

// Tester runs the CRUD check sequence against one resource
type Tester struct {
	client   hrapi.ClientInterface
	resource Resource
	out      io.Writer
	recorder Recorder
}

func NewTester(c hrapi.ClientInterface, r Resource, out io.Writer, rec Recorder) *Tester {
	return &Tester{
		client:   c,
		resource: r,
		out:      out,
		recorder: rec,
	}
}

// TestAll runs meta, list, create, read, update and delete, stopping at the first
// failure. Resources with a batch endpoint are then checked with TestBatch.
func (t *Tester) TestAll(ctx context.Context) bool {
	fmt.Fprintf(t.out, "\n--- Testing %s ---\n", t.resource.Name())
	if !t.TestMeta(ctx) {
		return false
	}
	if !t.TestList(ctx) {
		return false
	}
	id, ok := t.TestCreate(ctx)
	if !ok {
		return false
	}
	if !t.TestGet(ctx, id) {
		return false
	}
	if !t.TestUpdate(ctx, id) {
		return false
	}
	if !t.TestDelete(ctx, id) {
		return false
	}
	fmt.Fprintf(t.out, "✅ All %s tests passed\n", t.resource.Name())

	if b, ok := t.resource.(Batcher); ok {
		return t.TestBatch(ctx, b)
	}
	return true
}

func (t *Tester) TestMeta(ctx context.Context) bool {
	endpoint := t.resource.Endpoint() + "meta"
	resp, ok := t.expect(ctx, "meta", "GET "+endpoint, hrapi.StatusOK, func() (*hrapi.Response, error) {
		return t.client.Get(ctx, endpoint)
	})
	if ok {
		var meta model.Meta
		if err := resp.Decode(&meta); err == nil {
			log.WithContext(ctx).Debugf("%s meta describes %d fields", t.resource.Name(), len(meta.Fields))
		}
	}
	return ok
}

func (t *Tester) TestList(ctx context.Context) bool {
	endpoint := t.resource.Endpoint()
	_, ok := t.expect(ctx, "list", "GET "+endpoint, hrapi.StatusOK, func() (*hrapi.Response, error) {
		return t.client.Get(ctx, endpoint)
	})
	return ok
}

func (t *Tester) TestCreate(ctx context.Context) (model.ID, bool) {
	start := time.Now()
	request := "POST " + t.resource.Endpoint()

	id, resp, err := Create(ctx, t.client, t.resource)
	var statusErr *StatusError
	var missingErr *MissingIDError
	switch {
	case errors.As(err, &statusErr):
		fmt.Fprintf(t.out, "❌ %v\n", statusErr)
		return model.ID{}, t.record("create", start, resp, false, statusErr.Body)
	case errors.As(err, &missingErr):
		fmt.Fprintf(t.out, "⚠️ %s succeeded but %v\n", request, missingErr)
		return model.ID{}, t.record("create", start, resp, false, missingErr.Error())
	case err != nil:
		fmt.Fprintf(t.out, "❌ %s failed: %v\n", request, err)
		return model.ID{}, t.record("create", start, resp, false, err.Error())
	}

	fmt.Fprintf(t.out, "✅ %s (Created ID: %s)\n", request, id)
	return id, t.record("create", start, resp, true, "id "+id.String())
}

func (t *Tester) TestGet(ctx context.Context, id model.ID) bool {
	_, ok := t.expect(ctx, "read", "GET "+t.resource.Endpoint()+"{id}", hrapi.StatusOK, func() (*hrapi.Response, error) {
		return t.client.Get(ctx, t.itemEndpoint(id))
	})
	return ok
}

// TestUpdate replaces the record and reads it back to check the new values were stored
func (t *Tester) TestUpdate(ctx context.Context, id model.ID) bool {
	payload := t.resource.UpdatePayload()
	_, ok := t.expect(ctx, "update", "PUT "+t.resource.Endpoint()+"{id}", hrapi.StatusOK, func() (*hrapi.Response, error) {
		return t.client.Put(ctx, t.itemEndpoint(id), payload)
	})
	if !ok {
		return false
	}

	start := time.Now()
	request := "GET " + t.resource.Endpoint() + "{id} after update"
	resp, err := t.client.Get(ctx, t.itemEndpoint(id))
	if err != nil {
		fmt.Fprintf(t.out, "❌ %s failed: %v\n", request, err)
		return t.record("update-verify", start, nil, false, err.Error())
	}
	if !resp.HasStatus(hrapi.StatusOK...) {
		fmt.Fprintf(t.out, "❌ %s failed: %d - %s\n", request, resp.StatusCode, resp.Text())
		return t.record("update-verify", start, resp, false, resp.Text())
	}
	rec, err := resp.Record()
	if err != nil {
		fmt.Fprintf(t.out, "❌ %s failed: %v\n", request, err)
		return t.record("update-verify", start, resp, false, err.Error())
	}
	stale, missing := compareFields(payload, rec)
	if len(stale) > 0 {
		detail := "fields not updated: " + strings.Join(stale, ", ")
		fmt.Fprintf(t.out, "❌ %s: %s\n", request, detail)
		return t.record("update-verify", start, resp, false, detail)
	}

	var detail string
	if len(missing) > 0 {
		detail = "fields not returned: " + strings.Join(missing, ", ")
		fmt.Fprintf(t.out, "⚠️ %s: %s\n", request, detail)
	}
	fmt.Fprintf(t.out, "✅ %s reflects %d updated fields\n", request, len(payload)-len(missing))
	return t.record("update-verify", start, resp, true, detail)
}

// TestDelete removes the record and reads it back, expecting it gone or soft deleted
func (t *Tester) TestDelete(ctx context.Context, id model.ID) bool {
	_, ok := t.expect(ctx, "delete", "DELETE "+t.resource.Endpoint()+"{id}", hrapi.StatusNoContent, func() (*hrapi.Response, error) {
		return t.client.Delete(ctx, t.itemEndpoint(id))
	})
	if !ok {
		return false
	}

	start := time.Now()
	request := "GET " + t.resource.Endpoint() + "{id} after delete"
	resp, err := t.client.Get(ctx, t.itemEndpoint(id))
	if err != nil {
		fmt.Fprintf(t.out, "❌ %s failed: %v\n", request, err)
		return t.record("delete-verify", start, nil, false, err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(t.out, "✅ %s returned %d\n", request, resp.StatusCode)
		return t.record("delete-verify", start, resp, true, "")
	}
	if rec, err := resp.Record(); err == nil && rec.Bool("IsDeleted") {
		fmt.Fprintf(t.out, "✅ %s returned a soft-deleted record\n", request)
		return t.record("delete-verify", start, resp, true, "soft deleted")
	}

	fmt.Fprintf(t.out, "❌ %s still returned the record\n", request)
	return t.record("delete-verify", start, resp, false, "record still readable after delete")
}

// TestBatch fetches up to three listed records through the batch endpoint
func (t *Tester) TestBatch(ctx context.Context, b Batcher) bool {
	start := time.Now()
	request := "GET " + b.BatchEndpoint()

	resp, err := t.client.Get(ctx, t.resource.Endpoint())
	if err != nil || !resp.HasStatus(hrapi.StatusOK...) {
		fmt.Fprintf(t.out, "❌ %s failed to list %s\n", request, strings.ToLower(t.resource.Name()))
		return t.record("batch", start, resp, false, "list failed")
	}
	recs, err := resp.Records()
	if err != nil {
		fmt.Fprintf(t.out, "❌ %s failed: %v\n", request, err)
		return t.record("batch", start, resp, false, err.Error())
	}
	if len(recs) == 0 {
		fmt.Fprintf(t.out, "⚠️ %s skipped: No %s found\n", request, strings.ToLower(t.resource.Name()))
		return t.record("batch", start, resp, true, "skipped, nothing listed")
	}

	if len(recs) > batchSize {
		recs = recs[:batchSize]
	}
	ids := url.Values{}
	for _, rec := range recs {
		if id, _, ok := rec.ID(t.resource.IDField()); ok && !id.IsZero() {
			ids.Add("ids", id.String())
		}
	}

	_, ok := t.expect(ctx, "batch", request, hrapi.StatusOK, func() (*hrapi.Response, error) {
		return t.client.GetWithQuery(ctx, b.BatchEndpoint(), ids)
	})
	return ok
}

// List returns the records currently listed for the resource
func (t *Tester) List(ctx context.Context) ([]model.Record, error) {
	resp, err := t.client.Get(ctx, t.resource.Endpoint())
	if err != nil {
		return nil, err
	}
	if !resp.HasStatus(hrapi.StatusOK...) {
		return nil, &StatusError{Request: "GET " + t.resource.Endpoint(), StatusCode: resp.StatusCode, Body: resp.Text()}
	}
	return resp.Records()
}

// FirstID returns the id of the first listed record
func (t *Tester) FirstID(ctx context.Context) (model.ID, bool) {
	recs, err := t.List(ctx)
	if err != nil || len(recs) == 0 {
		return model.ID{}, false
	}
	id, _, ok := recs[0].ID(t.resource.IDField())
	return id, ok && !id.IsZero()
}

func (t *Tester) expect(ctx context.Context, step string, request string, codes []int, call func() (*hrapi.Response, error)) (*hrapi.Response, bool) {
	start := time.Now()
	resp, err := call()
	if err != nil {
		log.WithContext(ctx).WithError(err).Errorf("%s %s step failed", t.resource.Name(), step)
		fmt.Fprintf(t.out, "❌ %s failed: %v\n", request, err)
		return nil, t.record(step, start, nil, false, err.Error())
	}
	if !resp.HasStatus(codes...) {
		fmt.Fprintf(t.out, "❌ %s failed: %d - %s\n", request, resp.StatusCode, resp.Text())
		return resp, t.record(step, start, resp, false, resp.Text())
	}
	fmt.Fprintf(t.out, "✅ %s\n", request)
	return resp, t.record(step, start, resp, true, "")
}

func (t *Tester) record(step string, start time.Time, resp *hrapi.Response, passed bool, detail string) bool {
	result := report.StepResult{
		Resource: t.resource.Name(),
		Step:     step,
		Passed:   passed,
		Detail:   detail,
		Duration: time.Since(start),
	}
	if resp != nil {
		result.StatusCode = resp.StatusCode
	}
	t.recorder.Record(result)
	return passed
}

func (t *Tester) itemEndpoint(id model.ID) string {
	return t.resource.Endpoint() + url.PathEscape(id.String())
}
