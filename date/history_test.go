package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Appending in reverse order must keep the history sorted.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[0] != d2 || h.days[1] != d1 {
		t.Errorf("history days = %v want [%v %v]", h.days, d2, d1)
	}
	if h.values[0] != v2 || h.values[1] != v1 {
		t.Errorf("history values = %v want [%v %v]", h.values, v2, v1)
	}

	h.Append(d1, "overwritten")
	if got, _ := h.Get(d1); got != "overwritten" || h.Len() != 2 {
		t.Errorf("Append(d1) twice: Get(d1) = %q, Len() = %d, want %q, 2", got, h.Len(), "overwritten")
	}
}

func TestValueAsOf(t *testing.T) {
	h := new(History[float64])
	h.Append(New(2025, 1, 10), 100).Append(New(2025, 1, 20), 200)

	tests := []struct {
		on     Date
		want   float64
		wantOK bool
	}{
		{on: New(2025, 1, 9), want: 0, wantOK: false},
		{on: New(2025, 1, 10), want: 100, wantOK: true},
		{on: New(2025, 1, 15), want: 100, wantOK: true},
		{on: New(2025, 1, 20), want: 200, wantOK: true},
		{on: New(2025, 2, 1), want: 200, wantOK: true},
	}
	for _, tc := range tests {
		t.Run(tc.on.String(), func(t *testing.T) {
			got, ok := h.ValueAsOf(tc.on)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("ValueAsOf(%v) = %v, %v want %v, %v", tc.on, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestBetween(t *testing.T) {
	h := new(History[float64])
	for i := 1; i <= 10; i++ {
		h.Append(New(2025, 1, i), float64(i))
	}

	tests := []struct {
		name     string
		from, to Date
		want     int
	}{
		{name: "open", want: 10},
		{name: "from", from: New(2025, 1, 4), want: 7},
		{name: "to", to: New(2025, 1, 4), want: 4},
		{name: "inside", from: New(2025, 1, 3), to: New(2025, 1, 5), want: 3},
		{name: "empty", from: New(2025, 2, 1), want: 0},
		{name: "reversed", from: New(2025, 1, 8), to: New(2025, 1, 2), want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := h.Between(tc.from, tc.to).Len(); got != tc.want {
				t.Errorf("Between(%v, %v).Len() = %d, want %d", tc.from, tc.to, got, tc.want)
			}
		})
	}
}
