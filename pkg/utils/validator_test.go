package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid email", "maria@example.com", false},
		{"valid with subdomain", "pedro@mail.example.cl", false},
		{"valid with plus", "maria+notary@example.com", false},
		{"missing at", "maria.example.com", true},
		{"missing domain", "maria@", true},
		{"missing tld", "maria@example", true},
		{"empty", "", true},
		{"spaces", "maria @example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(15.00); err != nil {
		t.Errorf("ValidateAmount(15.00) returned error: %v", err)
	}
	if err := ValidateAmount(0); err != nil {
		t.Errorf("ValidateAmount(0) returned error: %v", err)
	}
	if err := ValidateAmount(-1); err == nil {
		t.Error("ValidateAmount(-1) did not return error")
	}
}
