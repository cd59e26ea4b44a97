package pipeline

import (
	"reflect"
	"testing"

	"github.com/matzehuels/promocanvas/pkg/errors"
	"github.com/matzehuels/promocanvas/pkg/layout"
)

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantIDs   []string
		wantFracs []float64
		wantCode  errors.Code
	}{
		{
			name:      "defaults",
			opts:      Options{Identifiers: []string{"A1"}},
			wantIDs:   []string{"A1"},
			wantFracs: []float64{DefaultFraction},
		},
		{
			name:      "blank slots skipped with their fractions",
			opts:      Options{Identifiers: []string{" A1 ", "", "A3"}, Fractions: []float64{0.2, 0.5, 0.3}},
			wantIDs:   []string{"A1", "A3"},
			wantFracs: []float64{0.2, 0.3},
		},
		{
			name:      "duplicates allowed",
			opts:      Options{Identifiers: []string{"A1", "A1"}},
			wantIDs:   []string{"A1", "A1"},
			wantFracs: []float64{DefaultFraction, DefaultFraction},
		},
		{
			name:      "sum above one accepted",
			opts:      Options{Identifiers: []string{"A", "B", "C"}, Fractions: []float64{0.6, 0.6, 0.6}},
			wantIDs:   []string{"A", "B", "C"},
			wantFracs: []float64{0.6, 0.6, 0.6},
		},
		{
			name:    "no identifiers",
			opts:    Options{Identifiers: []string{"", "  "}},
			wantIDs: []string{},
		},
		{
			name:     "too many identifiers",
			opts:     Options{Identifiers: []string{"A", "B", "C", "D"}},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "fraction too small",
			opts:     Options{Identifiers: []string{"A"}, Fractions: []float64{0.05}},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "fraction too large",
			opts:     Options{Identifiers: []string{"A"}, Fractions: []float64{0.61}},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "invalid identifier",
			opts:     Options{Identifiers: []string{"../etc"}},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "bad background",
			opts:     Options{Identifiers: []string{"A"}, Background: "#nothex"},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "bad quality",
			opts:     Options{Identifiers: []string{"A"}, Quality: 101},
			wantCode: errors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("err = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := opts.Requested(); !reflect.DeepEqual(got, tt.wantIDs) {
				t.Errorf("Requested() = %v, want %v", got, tt.wantIDs)
			}
			var fracs []float64
			for _, s := range opts.slots {
				fracs = append(fracs, s.fraction)
			}
			if !reflect.DeepEqual(fracs, tt.wantFracs) {
				t.Errorf("fractions = %v, want %v", fracs, tt.wantFracs)
			}
		})
	}
}

func TestValidateAndSetDefaultsCanvas(t *testing.T) {
	opts := Options{Identifiers: []string{"A"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if got := opts.Canvas(); got != layout.DefaultCanvas() {
		t.Errorf("Canvas() = %+v, want default", got)
	}
	if opts.Quality != DefaultQuality {
		t.Errorf("Quality = %d", opts.Quality)
	}

	// Idempotent: a second call keeps the validated state.
	opts.Fractions = []float64{0.01}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op, got %v", err)
	}
}
