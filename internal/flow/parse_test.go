package flow

import "testing"

func TestParseRPE(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"7", 7.0, true},
		{"8,5", 8.5, true},
		{" 9.5 ", 9.5, true},
		{"6.25", 6.3, true},
		{"1", 1.0, true},
		{"10", 10.0, true},
		{"0", 0, false},
		{"11", 0, false},
		{"10.5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"0x1p3", 0, false},
		{"1e1", 0, false},
		{"1_0", 0, false},
		{"+7", 0, false},
		{"7.", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseRPE(tc.in)
		if (err == nil) != tc.ok {
			t.Fatalf("ParseRPE(%q) err = %v, want ok=%v", tc.in, err, tc.ok)
		}
		if tc.ok && got != tc.want {
			t.Fatalf("ParseRPE(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseJerseyBounds(t *testing.T) {
	for _, in := range []string{"0", "99", "7"} {
		if _, err := ParseJersey(in, JoinJerseyMin, JoinJerseyMax); err != nil {
			t.Fatalf("join jersey %q rejected: %v", in, err)
		}
	}
	for _, in := range []string{"-1", "100", "7.5", "seven"} {
		if _, err := ParseJersey(in, JoinJerseyMin, JoinJerseyMax); err == nil {
			t.Fatalf("join jersey %q accepted", in)
		}
	}
	for _, in := range []string{"1", "999"} {
		if _, err := ParseJersey(in, RosterJerseyMin, RosterJerseyMax); err != nil {
			t.Fatalf("roster jersey %q rejected: %v", in, err)
		}
	}
	for _, in := range []string{"0", "1000"} {
		if _, err := ParseJersey(in, RosterJerseyMin, RosterJerseyMax); err == nil {
			t.Fatalf("roster jersey %q accepted", in)
		}
	}
}

func TestParseReps(t *testing.T) {
	lo, hi, err := parseReps("8")
	if err != nil || lo != 8 || hi != 8 {
		t.Fatalf("single = %d-%d, %v", lo, hi, err)
	}
	lo, hi, err = parseReps("8-12")
	if err != nil || lo != 8 || hi != 12 {
		t.Fatalf("range = %d-%d, %v", lo, hi, err)
	}
	for _, in := range []string{"12-8", "0", "8-", "-8", "x"} {
		if _, _, err := parseReps(in); err == nil {
			t.Fatalf("reps %q accepted", in)
		}
	}
}

func TestParseLoad(t *testing.T) {
	p, w, err := parseLoad("70%")
	if err != nil || p == nil || *p != 70 || w != nil {
		t.Fatalf("percent: %v %v %v", p, w, err)
	}
	p, w, err = parseLoad("62,5kg")
	if err != nil || w == nil || *w != 62.5 || p != nil {
		t.Fatalf("kg: %v %v %v", p, w, err)
	}
	if _, w, err = parseLoad("60"); err != nil || *w != 60 {
		t.Fatalf("bare: %v %v", w, err)
	}
	for _, in := range []string{"0%", "120%", "-5kg", "heavy"} {
		if _, _, err := parseLoad(in); err == nil {
			t.Fatalf("load %q accepted", in)
		}
	}
}
