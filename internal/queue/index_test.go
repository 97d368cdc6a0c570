package queue

import (
	"errors"
	"testing"
)

func TestVisibleToCombined(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		visible int
		want    int
		wantErr bool
	}{
		{"with current", State{CurrentIndex: 0, TotalItems: 4}, 0, 1, false},
		{"with current last", State{CurrentIndex: 0, TotalItems: 4}, 2, 3, false},
		{"no current", State{CurrentIndex: -1, TotalItems: 3}, 1, 1, false},
		{"past upcoming count", State{CurrentIndex: 0, TotalItems: 4}, 3, 0, true},
		{"negative", State{CurrentIndex: 0, TotalItems: 4}, -1, 0, true},
		{"empty queue", State{CurrentIndex: -1, TotalItems: 0}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VisibleToCombined(tt.visible, tt.state)
			if tt.wantErr {
				var rangeErr *OutOfRangeError
				if !errors.As(err, &rangeErr) {
					t.Fatalf("err = %v, want OutOfRangeError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VisibleToCombined: %v", err)
			}
			if got != tt.want {
				t.Errorf("VisibleToCombined(%d) = %d, want %d", tt.visible, got, tt.want)
			}
		})
	}
}

func TestCombinedToVisible_CurrentHasNoVisibleSlot(t *testing.T) {
	st := State{CurrentIndex: 0, TotalItems: 3}

	_, err := CombinedToVisible(0, st)

	var rangeErr *OutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("err = %v, want OutOfRangeError for the current item", err)
	}
}

func TestIndexTranslation_RoundTrip(t *testing.T) {
	// visibleToCombined(combinedToVisible(i)) == i for every valid
	// non-current combined index.
	states := []State{
		{CurrentIndex: 0, TotalItems: 5},
		{CurrentIndex: -1, TotalItems: 4},
		{CurrentIndex: 0, TotalItems: 1},
	}

	for _, st := range states {
		for combined := 0; combined < st.TotalItems; combined++ {
			if st.HasCurrent() && combined == st.CurrentIndex {
				continue
			}
			visible, err := CombinedToVisible(combined, st)
			if err != nil {
				t.Fatalf("CombinedToVisible(%d): %v", combined, err)
			}
			back, err := VisibleToCombined(visible, st)
			if err != nil {
				t.Fatalf("VisibleToCombined(%d): %v", visible, err)
			}
			if back != combined {
				t.Errorf("round trip %d -> %d -> %d", combined, visible, back)
			}
		}
	}
}
