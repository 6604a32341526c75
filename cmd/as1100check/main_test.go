package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/testutils"
)

// execute runs the CLI in-process and returns stdout, stderr and the
// command error.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDrawing(t *testing.T, dir, name string, spec domain.DrawingSpec) string {
	t.Helper()
	var (
		data []byte
		err  error
	)
	if filepath.Ext(name) == ".yaml" {
		data, err = yaml.Marshal(spec)
	} else {
		data, err = json.Marshal(spec)
	}
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestValidate_CompliantDrawing(t *testing.T) {
	path := writeDrawing(t, t.TempDir(), "bracket.json", testutils.CompliantDrawingSpec())

	stdout, _, err := execute(t, "", "validate", path)
	require.NoError(t, err)

	var report domain.ComplianceReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 1.0, report.WeightedScore)
	assert.True(t, report.OverallPassed)
	assert.Equal(t, "mounting-bracket-l", report.Drawing)
	assert.Len(t, report.Validators, 6)
}

func TestValidate_StrictRejection(t *testing.T) {
	spec := testutils.CompliantDrawingSpec()
	spec.Margins.Left = 15
	path := writeDrawing(t, t.TempDir(), "bracket.yaml", spec)

	stdout, _, err := execute(t, "", "validate", "--strict", "--format", "table", path)
	require.ErrorIs(t, err, errRejected)
	assert.Contains(t, stdout, "REJECTED")
	assert.Contains(t, stdout, "left border margin 15mm")
	assert.Contains(t, stdout, "views_projection requires manual review")
}

func TestValidate_Stdin(t *testing.T) {
	data, err := json.Marshal(testutils.CompliantDrawingSpec())
	require.NoError(t, err)

	stdout, _, err := execute(t, string(data), "validate", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"overall_passed": true`)
}

func TestValidate_MetricsAndStore(t *testing.T) {
	dir := t.TempDir()
	path := writeDrawing(t, dir, "bracket.json", testutils.CompliantDrawingSpec())
	db := filepath.Join(dir, "reports.db")

	stdout, stderr, err := execute(t, "", "--db", db, "validate", "--metrics", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, `compliance_runs_total{outcome="accepted"} 1`)

	var report domain.ComplianceReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))

	listed, _, err := execute(t, "", "--db", db, "reports", "list")
	require.NoError(t, err)
	assert.Contains(t, listed, report.ID)

	got, _, err := execute(t, "", "--db", db, "reports", "get", report.ID)
	require.NoError(t, err)
	assert.Contains(t, got, `"weighted_score": 1`)

	_, _, err = execute(t, "", "--db", db, "reports", "get", "missing")
	assert.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	dir := t.TempDir()
	drawing := writeDrawing(t, dir, "bracket.json", testutils.CompliantDrawingSpec())

	unknown := filepath.Join(dir, "unknown.json")
	require.NoError(t, os.WriteFile(unknown, []byte(`{"name": "x", "sheet": "A3"}`), 0o600))

	badRubric := filepath.Join(dir, "rubric.yaml")
	require.NoError(t, os.WriteFile(badRubric, []byte("version: \"1.0.0\"\nvalidators: []\n"), 0o600))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing drawing", []string{"validate", filepath.Join(dir, "nope.json")}, "read"},
		{"unknown drawing field", []string{"validate", unknown}, "unknown field"},
		{"invalid rubric", []string{"--rubric", badRubric, "validate", drawing}, "invalid configuration"},
		{"missing rubric", []string{"--rubric", filepath.Join(dir, "nope.yaml"), "validate", drawing}, "configuration not found"},
		{"bad format", []string{"validate", "--format", "xml", drawing}, "unknown format"},
		{"no arguments", []string{"validate"}, "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGate(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantUse bool
	}{
		{"at threshold", []string{"gate", "--confidence", "0.7"}, true},
		{"below threshold", []string{"gate", "--confidence", "0.69"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, "", tt.args...)
			require.NoError(t, err)

			var decision domain.GateDecision
			require.NoError(t, json.Unmarshal([]byte(stdout), &decision))
			assert.Equal(t, tt.wantUse, decision.UseAutomatic)
			assert.Equal(t, 0.7, decision.Threshold)
		})
	}
}

func TestGate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extraction.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"parameters": {"sheet_size": "A3"}, "confidence": 0.9}`), 0o600))

	stdout, _, err := execute(t, "", "gate", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"use_automatic": true`)

	_, _, err = execute(t, "", "gate")
	assert.Error(t, err)
}

func TestGate_RejectsConfidenceOutsideUnitInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extraction.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"confidence": -3}`), 0o600))

	tests := []struct {
		name string
		args []string
	}{
		{"flag above one", []string{"gate", "--confidence", "1.5"}},
		{"flag NaN", []string{"gate", "--confidence", "NaN"}},
		{"file below zero", []string{"gate", "--file", path}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, "", tt.args...)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidScore)
			assert.Contains(t, err.Error(), "outside [0, 1]")
			assert.Empty(t, stdout)
		})
	}
}

func TestRubric(t *testing.T) {
	stdout, _, err := execute(t, "", "rubric")
	require.NoError(t, err)
	assert.Contains(t, stdout, "rubric as1100-default 1.0.0")
	assert.Contains(t, stdout, "dimensioning")
	assert.Contains(t, stdout, "fingerprint ")

	dump, _, err := execute(t, "", "rubric", "--dump")
	require.NoError(t, err)
	assert.Contains(t, dump, "global_threshold: 0.95")
}

func TestReports_RequiresDB(t *testing.T) {
	_, _, err := execute(t, "", "reports", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--db is required")
}
