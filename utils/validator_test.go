package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"dana@example.com", true},
		{"dana.fields@sub.example.co", true},
		{"dana+tag@example.com", true},
		{"  dana@example.com  ", true},
		{"", false},
		{"plainaddress", false},
		{"@example.com", false},
		{"dana@", false},
		{"dana..fields@example.com", false}, // consecutive dots in local part
		{".dana@example.com", false},        // leading dot
		{"dana.@example.com", false},        // trailing dot
		{"dana@example", false},             // no TLD
		{"dana@example.c", false},           // TLD too short
		{"dana@-example.com", false},        // label starts with hyphen
		{"dana@example-.com", false},        // label ends with hyphen
		{"dana@exa mple.com", false},
	}

	for _, tt := range tests {
		if got := ValidateEmail(tt.email); got != tt.want {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  hello\x00world  "); got != "helloworld" {
		t.Errorf("SanitizeInput = %q", got)
	}
}
