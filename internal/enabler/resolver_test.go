package enabler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFinder implements Finder for testing.
type MockFinder struct {
	FindWeeklyEnablerFunc func(ctx context.Context, date time.Time, candidates []string) (int, error)
	Calls                 int
}

func (m *MockFinder) FindWeeklyEnabler(ctx context.Context, date time.Time, candidates []string) (int, error) {
	m.Calls++
	if m.FindWeeklyEnablerFunc != nil {
		return m.FindWeeklyEnablerFunc(ctx, date, candidates)
	}
	return 0, errors.New("FindWeeklyEnabler not implemented")
}

func TestFromTable(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{"first week start", time.Date(2025, 3, 3, 0, 0, 0, 0, time.Local), 16345},
		{"first week end", time.Date(2025, 3, 9, 23, 0, 0, 0, time.Local), 16345},
		{"second week", time.Date(2025, 3, 12, 0, 0, 0, 0, time.Local), 16760},
		{"third week", time.Date(2025, 3, 21, 0, 0, 0, 0, time.Local), 17301},
		{"holiday gap", time.Date(2025, 3, 24, 0, 0, 0, 0, time.Local), NoEnabler},
		{"fourth week", time.Date(2025, 3, 26, 0, 0, 0, 0, time.Local), 17476},
		{"outside calendar", time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local), NoEnabler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromTable(tt.date))
		})
	}
}

func TestResolveRequestedWins(t *testing.T) {
	finder := &MockFinder{}
	r := NewResolver(finder, nil)

	// date is inside the static table, but the explicit id takes
	// precedence over everything
	id, err := r.Resolve(context.Background(), time.Date(2025, 3, 5, 0, 0, 0, 0, time.Local), 99999)

	require.NoError(t, err)
	assert.Equal(t, 99999, id)
	assert.Zero(t, finder.Calls)
}

func TestResolveStaticTable(t *testing.T) {
	finder := &MockFinder{}
	r := NewResolver(finder, nil)

	id, err := r.Resolve(context.Background(), time.Date(2025, 3, 5, 0, 0, 0, 0, time.Local), 0)

	require.NoError(t, err)
	assert.Equal(t, 16345, id)
	assert.Zero(t, finder.Calls)
}

func TestResolveFallsBackToFinder(t *testing.T) {
	finder := &MockFinder{
		FindWeeklyEnablerFunc: func(ctx context.Context, date time.Time, candidates []string) (int, error) {
			assert.Equal(t, []string{"Mildred Moreno"}, candidates)
			return 20001, nil
		},
	}
	r := NewResolver(finder, []string{"Mildred Moreno"})

	id, err := r.Resolve(context.Background(), time.Date(2025, 5, 7, 0, 0, 0, 0, time.Local), 0)

	require.NoError(t, err)
	assert.Equal(t, 20001, id)
	assert.Equal(t, 1, finder.Calls)
}

func TestResolvePropagatesFinderError(t *testing.T) {
	wantErr := errors.New("no enabler")
	finder := &MockFinder{
		FindWeeklyEnablerFunc: func(ctx context.Context, date time.Time, candidates []string) (int, error) {
			return 0, wantErr
		},
	}
	r := NewResolver(finder, nil)

	_, err := r.Resolve(context.Background(), time.Date(2025, 5, 7, 0, 0, 0, 0, time.Local), 0)

	assert.ErrorIs(t, err, wantErr)
}
