package kiturami

import "testing"

func TestHexFieldEncoding(t *testing.T) {
	cases := []struct {
		value int
		width int
		want  string
	}{
		{0, 2, "00"},
		{70, 2, "46"},
		{80, 2, "50"},
		{255, 2, "FF"},
		{255, 4, "00FF"},
	}
	for _, tc := range cases {
		if got := hexUpper(tc.value, tc.width).encode(); got != tc.want {
			t.Fatalf("hex %d width %d: expected %q, got %q", tc.value, tc.width, got, tc.want)
		}
	}
}

func TestDecimalFieldEncoding(t *testing.T) {
	cases := []struct {
		value int
		width int
		want  string
	}{
		{1, 2, "01"},
		{2, 2, "02"},
		{0, 2, "00"},
		{45, 2, "45"},
	}
	for _, tc := range cases {
		if got := dec(tc.value, tc.width).encode(); got != tc.want {
			t.Fatalf("dec %d width %d: expected %q, got %q", tc.value, tc.width, got, tc.want)
		}
	}
}

func TestEncodeBodyComposition(t *testing.T) {
	body := encodeBody(lit("01"), lit("00000000"), dec(1, 2))
	if body != "010000000001" {
		t.Fatalf("unexpected body: %q", body)
	}

	body = encodeBody(lit("00000000"), hexUpper(80, 2), hexUpper(70, 2))
	if body != "000000005046" {
		t.Fatalf("unexpected body: %q", body)
	}
}
