package domain

import "testing"

func TestAddressFormatted(t *testing.T) {
	addr := &Address{
		Line1:      "10 Ponsonby Road",
		City:       "Auckland",
		Region:     "Auckland",
		PostalCode: "1011",
		Country:    "New Zealand",
	}
	want := "10 Ponsonby Road, Auckland, Auckland, 1011, New Zealand"
	if got := addr.Formatted(); got != want {
		t.Fatalf("Formatted() = %q, want %q", got, want)
	}

	var nilAddr *Address
	if got := nilAddr.Formatted(); got != "-" {
		t.Fatalf("nil Formatted() = %q, want -", got)
	}
	if got := (&Address{}).Formatted(); got != "-" {
		t.Fatalf("empty Formatted() = %q, want -", got)
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+64211234567", "0211234567"},
		{"64211234567", "0211234567"},
		{"211234567", "0211234567"},
		{"09 555 0100", "09 555 0100"},
		{"", "-"},
	}
	for _, tt := range tests {
		if got := FormatPhone(tt.in); got != tt.want {
			t.Errorf("FormatPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
