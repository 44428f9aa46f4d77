package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/JonMunkholm/controltower/internal/core"
)

// errEmptyBody rejects a request without a body.
var errEmptyBody = core.Errorf(core.KindInvalid, "Request body is required")

// dateOnly matches the value of an <input type="date">.
var dateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// decodeJSON reads a JSON object body into v. Unknown fields are ignored,
// as the portal sends display-only fields back on edit.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}
	if err := json.Unmarshal(body, v); err != nil {
		return invalidJSON(err)
	}
	return nil
}

// decodeRecord reads a record body. Date fields may be sent as RFC 3339
// timestamps, bare yyyy-mm-dd dates or empty strings, which mean null.
func decodeRecord(w http.ResponseWriter, r *http.Request, rec core.Record) error {
	var fields map[string]json.RawMessage
	if err := decodeJSON(w, r, &fields); err != nil {
		return err
	}

	for k, raw := range fields {
		var s string
		if json.Unmarshal(raw, &s) != nil || !isDateField(rec, k) {
			continue
		}
		switch {
		case strings.TrimSpace(s) == "":
			fields[k] = json.RawMessage("null")
		case dateOnly.MatchString(s):
			fields[k], _ = json.Marshal(s + "T00:00:00Z")
		}
	}

	normalized, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(normalized, rec); err != nil {
		return invalidJSON(err)
	}
	return nil
}

// isDateField reports whether the field of rec tagged json:"key" holds a
// time.
func isDateField(rec core.Record, key string) bool {
	t := reflect.TypeOf(rec)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name != key {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		return ft == reflect.TypeOf(time.Time{})
	}
	return false
}

func invalidJSON(err error) error {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return core.ValidationError{Field: te.Field, Message: "has the wrong type"}
	}
	return core.Errorf(core.KindInvalid, "Invalid JSON body")
}
