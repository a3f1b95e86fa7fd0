package prlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingFilename(t *testing.T) {
	date := time.Date(2025, 3, 5, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "pr_tracking_05_03_2025.json", TrackingFilename(date))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2025, 3, 5, 0, 0, 0, 0, time.Local)

	content := `{
		"1234": {"estado": "aprobado", "repositorio": "payments-api"},
		"1235": {"estado": "pendiente", "repositorio": "payments-api"},
		"1236": {"estado": "aprobado", "repositorio": "core-ledger"}
	}`
	path := filepath.Join(dir, TrackingFilename(date))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reviews, err := Load(dir, date)
	require.NoError(t, err)
	assert.Len(t, reviews, 3)
	assert.Equal(t, StateApproved, reviews["1234"].State)
	assert.Equal(t, "core-ledger", reviews["1236"].Repository)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), time.Date(2025, 3, 5, 0, 0, 0, 0, time.Local))
	assert.ErrorIs(t, err, ErrTrackingNotFound)
}

func TestApproved(t *testing.T) {
	reviews := map[string]Review{
		"1": {State: StateApproved, Repository: "a"},
		"2": {State: "pendiente", Repository: "b"},
		"3": {State: StateApproved, Repository: "c"},
	}

	approved := Approved(reviews)
	assert.Len(t, approved, 2)
	for _, r := range approved {
		assert.Equal(t, StateApproved, r.State)
	}
}

func TestSummary(t *testing.T) {
	approved := []Review{
		{State: StateApproved, Repository: "payments-api"},
		{State: StateApproved, Repository: "core-ledger"},
		{State: StateApproved, Repository: "payments-api"},
		{State: StateApproved},
	}

	got := Summary(approved)
	assert.Equal(t,
		"Se revisaron y aprobaron PRs correspondientes a los siguientes repositorios: core-ledger, payments-api.",
		got)
}

func TestEstimateHours(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{1, 0.5},  // 10 min rounds up to the half-hour floor
		{3, 0.5},  // 30 min
		{6, 1.0},  // 60 min
		{8, 1.5},  // 80 min rounds to 1.5
		{15, 2.5}, // 150 min
		{20, 2.5}, // 200 min clamps at the ceiling
		{0, 0.5},  // clamped at the floor
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, EstimateHours(tt.count), 1e-9, "count=%d", tt.count)
	}
}
