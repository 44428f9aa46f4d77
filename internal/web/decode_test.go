package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/controltower/internal/core"
)

func recordRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeRecordDates(t *testing.T) {
	var task core.ProgramTask
	err := decodeRecord(httptest.NewRecorder(), recordRequest(`{
		"workstream": "2026-01-01",
		"startDate": "2026-03-01",
		"endDate": "",
		"customerName": "Acme"
	}`), &task)
	require.NoError(t, err)

	require.NotNil(t, task.StartDate)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *task.StartDate)
	assert.Nil(t, task.EndDate)
	assert.Equal(t, "2026-01-01", task.Workstream, "text fields are left alone")
	assert.Equal(t, "Acme", *task.CustomerName)
}

func TestDecodeRecordKeepsTimestamps(t *testing.T) {
	var task core.InfraTask
	err := decodeRecord(httptest.NewRecorder(), recordRequest(`{"startDate":"2026-03-01T09:30:00Z"}`), &task)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC), task.StartDate)
}

func TestDecodeRecordErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "  ", "Request body is required"},
		{"malformed", `{"progress":`, "Invalid JSON body"},
		{"wrong type", `{"progress":"half"}`, "progress: has the wrong type"},
		{"not a date", `{"startDate":"soon"}`, "Invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task core.ProgramTask
			err := decodeRecord(httptest.NewRecorder(), recordRequest(tt.body), &task)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, core.KindInvalid, core.KindOf(err))
		})
	}
}

func TestIsDateField(t *testing.T) {
	assert.True(t, isDateField(&core.InfraTask{}, "startDate"))
	assert.True(t, isDateField(&core.InfraTask{}, "endDate"))
	assert.False(t, isDateField(&core.InfraTask{}, "taskName"))
	assert.False(t, isDateField(&core.InfraTask{}, "missing"))
}
