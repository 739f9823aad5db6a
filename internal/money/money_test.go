package money

import "testing"

func TestString(t *testing.T) {
	cases := map[Money]string{
		0:     "0.00",
		5:     "0.05",
		1100:  "11.00",
		1177:  "11.77",
		23:    "0.23",
		-23:   "-0.23",
		12345: "123.45",
	}
	for amount, want := range cases {
		if got := amount.String(); got != want {
			t.Fatalf("String(%d) = %q, want %q", amount.Cents(), got, want)
		}
	}
}

func TestParse(t *testing.T) {
	valid := map[string]Money{
		"12":     1200,
		"12.3":   1230,
		"12.00":  1200,
		"0.07":   7,
		" 5.50 ": 550,
		"-1.25":  -125,
	}
	for input, want := range valid {
		got, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %d, want %d", input, got.Cents(), want.Cents())
		}
	}

	invalid := []string{"", "abc", "12.345", "1,25", "$5", "1.2.3"}
	for _, input := range invalid {
		if _, err := Parse(input); err == nil {
			t.Fatalf("Parse(%q): expected error", input)
		}
	}
}

func TestMulRoundBpsHalfUp(t *testing.T) {
	// 11.00 * 7% = 0.77 exactly.
	if got := MulRoundBps(1100, 700); got != 77 {
		t.Fatalf("tax on 11.00 = %s, want 0.77", got)
	}
	// 10.05 * 7% = 0.7035 -> rounds half-up to 0.70.
	if got := MulRoundBps(1005, 700); got != 70 {
		t.Fatalf("tax on 10.05 = %s, want 0.70", got)
	}
	// 0.50 * 7% = 0.035 -> rounds half-up to 0.04.
	if got := MulRoundBps(50, 700); got != 4 {
		t.Fatalf("tax on 0.50 = %s, want 0.04", got)
	}
}

func TestCeilDollar(t *testing.T) {
	if got := Money(1177).CeilDollar(); got != 1200 {
		t.Fatalf("ceil(11.77) = %s, want 12.00", got)
	}
	if got := Money(1200).CeilDollar(); got != 1200 {
		t.Fatalf("ceil(12.00) = %s, want 12.00", got)
	}
	if got := Money(0).CeilDollar(); got != 0 {
		t.Fatalf("ceil(0) = %s, want 0.00", got)
	}
}

func TestFromFloat(t *testing.T) {
	if got := FromFloat(10.5); got != 1050 {
		t.Fatalf("FromFloat(10.5) = %d", got.Cents())
	}
	if got := FromFloat(0.005); got != 1 {
		t.Fatalf("FromFloat(0.005) = %d, want 1", got.Cents())
	}
	if got := FromFloat(-0.23); got != -23 {
		t.Fatalf("FromFloat(-0.23) = %d, want -23", got.Cents())
	}
}
