package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// LoginResponse is the body returned by the login endpoint
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Meta describes the fields of a resource as published by its meta endpoint
type Meta struct {
	Fields []MetaField `json:"fields"`
}

type MetaField struct {
	Name        string        `json:"name"`
	DisplayName string        `json:"displayName"`
	Type        string        `json:"type"`
	Required    bool          `json:"required"`
	Order       int           `json:"order"`
	Options     []interface{} `json:"options,omitempty"`
}

// Payload is a request body sent to a resource endpoint
type Payload map[string]interface{}

// ID is a resource identifier exactly as the API returned it. Numbers are kept as
// json.Number so they marshal back unchanged into child payloads.
type ID struct {
	value interface{}
}

func NewID(v interface{}) ID {
	return ID{value: v}
}

// IsZero reports whether the id is missing, null or an empty string
func (id ID) IsZero() bool {
	switch v := id.value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

func (id ID) String() string {
	if id.value == nil {
		return ""
	}
	return fmt.Sprint(id.value)
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	id.value = v
	return nil
}

// Record is a JSON object that remembers the order its keys arrived in.
type Record struct {
	keys   []string
	fields map[string]interface{}
}

func NewRecord(keysAndValues ...interface{}) Record {
	r := Record{fields: make(map[string]interface{})}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		r.Set(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1])
	}
	return r
}

func (r *Record) Set(key string, value interface{}) {
	if r.fields == nil {
		r.fields = make(map[string]interface{})
	}
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = value
}

func (r Record) Get(key string) (interface{}, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Keys returns the keys in the order they were received
func (r Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

func (r Record) Len() int {
	return len(r.keys)
}

// ID returns the record identifier. The named field wins when present; otherwise the
// first key whose lower-cased name ends in "id" is used. The chosen key is returned too.
func (r Record) ID(field string) (ID, string, bool) {
	if field != "" {
		if v, ok := r.fields[field]; ok {
			return NewID(v), field, true
		}
	}
	for _, k := range r.keys {
		if strings.HasSuffix(strings.ToLower(k), "id") {
			return NewID(r.fields[k]), k, true
		}
	}
	return ID{}, "", false
}

// Bool returns the value of a boolean field, false when absent or not a bool
func (r Record) Bool(key string) bool {
	b, _ := r.fields[key].(bool)
	return b
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}

	r.keys = nil
	r.fields = make(map[string]interface{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		r.Set(key, value)
	}

	_, err = dec.Token()
	return err
}
