package resource

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"time"

	"github.com/syrilster/leave-api-e2e/internal/model"
)

const dateLayout = "2006-01-02"

// compareFields checks the payload against the read-back record. stale lists, sorted, the
// fields returned with a different value; missing lists the fields the server did not return.
func compareFields(payload model.Payload, rec model.Record) (stale []string, missing []string) {
	for k, want := range payload {
		got, ok := rec.Get(k)
		switch {
		case !ok:
			missing = append(missing, k)
		case !sameValue(want, got):
			stale = append(stale, k)
		}
	}
	sort.Strings(stale)
	sort.Strings(missing)
	return stale, missing
}

// sameValue compares two values by their JSON meaning. Numbers compare numerically and a
// date-only string matches a timestamp on the same day.
func sameValue(want, got interface{}) bool {
	w, err := normalize(want)
	if err != nil {
		return false
	}
	g, err := normalize(got)
	if err != nil {
		return false
	}

	switch wv := w.(type) {
	case json.Number:
		switch gv := g.(type) {
		case json.Number:
			wf, werr := wv.Float64()
			gf, gerr := gv.Float64()
			return werr == nil && gerr == nil && wf == gf
		case string:
			return wv.String() == gv
		}
		return false
	case string:
		switch gv := g.(type) {
		case string:
			return wv == gv || sameDay(wv, gv)
		case json.Number:
			return wv == gv.String()
		}
		return false
	}
	return reflect.DeepEqual(w, g)
}

func normalize(v interface{}) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func sameDay(date string, timestamp string) bool {
	d, err := time.Parse(dateLayout, date)
	if err != nil || len(timestamp) < len(dateLayout) {
		return false
	}
	t, err := time.Parse(dateLayout, timestamp[:len(dateLayout)])
	return err == nil && d.Equal(t)
}
