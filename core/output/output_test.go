package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"cmdb-sync/core/history"
	"cmdb-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Mode
		wantErr bool
	}{
		{"Default", "", ModeTable, false},
		{"Table", "table", ModeTable, false},
		{"JSON", "json", ModeJSON, false},
		{"YAMLUpper", "YAML", ModeYAML, false},
		{"YMLAlias", "yml", ModeYAML, false},
		{"Padded", " json ", ModeJSON, false},
		{"Unknown", "xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func reportFixture() *reconcile.RunReport {
	return &reconcile.RunReport{
		RunID:      "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		Instance:   "dev85142.service-now.com",
		StartedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 3, 1, 12, 0, 5, 0, time.UTC),
		Created:    2,
		Updated:    1,
		Noops:      7,
		Planned:    reconcile.PlanSummary{Creates: 2, Updates: 1, Noops: 7},
		Actions: []reconcile.ActionRecord{
			{Type: reconcile.ActionCreate, Key: "s1", Name: "web01", Reason: "host not present in target"},
		},
		Failures: []reconcile.Failure{
			{Key: "s9", Stage: reconcile.StageExecute, Cause: "500 from target"},
		},
		UnmatchedKeys: []reconcile.Key{"orphan"},
		ReloadIssued:  true,
	}
}

func TestRenderReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, ModeJSON, reportFixture()))

	var got reconcile.RunReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7", got.RunID)
	assert.Equal(t, 2, got.Created)
	assert.True(t, got.ReloadIssued)
}

func TestRenderReportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, ModeYAML, reportFixture()))
	assert.Contains(t, buf.String(), "run_id: 7c9e6679-7425-40de-944b-e07fc1f90ae7")
}

func TestRenderReportTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, ModeTable, reportFixture()))

	out := buf.String()
	assert.Contains(t, out, "web01")
	assert.Contains(t, out, "s9")
	assert.Contains(t, out, "left untouched")
}

func TestRenderHistoryTable(t *testing.T) {
	runs := []history.Run{
		{
			ID:        "run-1",
			Instance:  "dev85142.service-now.com",
			StartedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Created:   3,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderHistory(&buf, ModeTable, runs))
	assert.Contains(t, buf.String(), "run-1")
}

func TestRenderHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHistory(&buf, ModeTable, nil))
	assert.True(t, strings.Contains(buf.String(), "No recorded runs"))
}

func TestRenderHistoryJSON(t *testing.T) {
	runs := []history.Run{{ID: "run-1", Created: 3}}

	var buf bytes.Buffer
	require.NoError(t, RenderHistory(&buf, ModeJSON, runs))

	var got []history.Run
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "run-1", got[0].ID)
}
