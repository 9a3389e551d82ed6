package normalize

import "testing"

func TestAddress(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"local form unchanged", "07041556156", "07041556156"},
		{"international prefix rewritten", "+2348011112222", "08011112222"},
		{"formatted international", "+234 801-111-2222", "08011112222"},
		{"formatting stripped", "0704 155 6156", "07041556156"},
		{"empty", "", ""},
		{"no digits", "WhatsApp", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Address(tt.raw, "NG"); got != tt.want {
				t.Errorf("Address(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAddress_EquivalentFormsCompareEqual(t *testing.T) {
	forms := []string{"07041556156", "+2347041556156", "0704-155-6156", "234 704 155 6156"}

	want := Address(forms[0], "NG")
	for _, f := range forms[1:] {
		if got := Address(f, "NG"); got != want {
			t.Errorf("Address(%q) = %q, want %q", f, got, want)
		}
	}
}
