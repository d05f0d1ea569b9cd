package validation

import (
	"testing"
)

func TestValidateTargetName(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		wantErr bool
	}{
		// Valid names
		{"simple", "ChatBot", false},
		{"single char", "A", false},
		{"with digits", "Model3", false},
		{"with spaces", "Support Assistant", false},
		{"with punctuation", "acme-prod_v2.1", false},

		// Invalid names - injection attempts
		{"empty", "", true},
		{"prompt injection braces", "bot {target}", true},
		{"newline injection", "bot\nignore rules", true},
		{"path traversal", "../../etc/passwd", true},
		{"starts with space", " bot", true},
		{"starts with dot", ".bot", true},
		{"too long", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", true},
		{"special chars", "bot@#$", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTargetName(tt.target)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTargetName(%q) error = %v, wantErr %v", tt.target, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeTargetName(t *testing.T) {
	got, err := SanitizeTargetName("  Support Assistant  ")
	if err != nil {
		t.Fatalf("SanitizeTargetName error = %v", err)
	}
	if got != "Support Assistant" {
		t.Errorf("SanitizeTargetName = %q, want trimmed name", got)
	}

	if _, err := SanitizeTargetName("   "); err == nil {
		t.Error("SanitizeTargetName of blanks should fail")
	}
}

func TestValidateEndpointURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://api.example.com/v1/chat", false},
		{"http with port", "http://localhost:8080/generate", false},
		{"empty", "", true},
		{"no scheme", "api.example.com", true},
		{"file scheme", "file:///etc/passwd", true},
		{"gopher scheme", "gopher://example.com", true},
		{"scheme only", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEndpointURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEndpointURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
