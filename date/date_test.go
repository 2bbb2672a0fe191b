package date

import "testing"

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: New(2025, 7, 1)},
		{in: "2025-7-1", want: New(2025, 7, 1)},
		{in: "2024-02-29", want: New(2024, 2, 29)},
		{in: "yesterday", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSub(t *testing.T) {
	a, b := New(2024, 12, 30), New(2025, 1, 2)
	if got := b.Sub(a); got != 3 {
		t.Errorf("Sub() = %d, want 3", got)
	}
	if got := a.Sub(b); got != -3 {
		t.Errorf("Sub() = %d, want -3", got)
	}
	if got := a.Add(3); got != b {
		t.Errorf("Add(3) = %v, want %v", got, b)
	}
}

func TestCommon(t *testing.T) {
	btc, mstr := new(History[float64]), new(History[float64])
	btc.Append(New(2025, 1, 1), 1).Append(New(2025, 1, 2), 2).Append(New(2025, 1, 3), 3)
	mstr.Append(New(2025, 1, 2), 20).Append(New(2025, 1, 3), 30).Append(New(2025, 1, 4), 40)

	var got []Date
	for on := range Common(btc, mstr) {
		got = append(got, on)
	}
	want := []Date{New(2025, 1, 2), New(2025, 1, 3)}
	if len(got) != len(want) {
		t.Fatalf("Common() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Common()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	var all int
	for range Iterate(btc, mstr) {
		all++
	}
	if all != 4 {
		t.Errorf("Iterate() yields %d dates, want 4", all)
	}
}
