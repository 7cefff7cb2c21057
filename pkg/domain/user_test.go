package domain

import "testing"

func TestValidPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		valid bool
	}{
		{"ten digits", "5512345678", true},
		{"nine digits", "551234567", false},
		{"eleven digits", "55123456789", false},
		{"letters", "55123456ab", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidPhone(tt.phone); got != tt.valid {
				t.Errorf("ValidPhone(%q) = %v, want %v", tt.phone, got, tt.valid)
			}
		})
	}
}

func TestValidUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		valid    bool
	}{
		{"eight chars", "comicfan", true},
		{"twelve chars", "comicfan2024", true},
		{"seven chars", "comicfn", false},
		{"thirteen chars", "comicfan20244", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidUsername(tt.username); got != tt.valid {
				t.Errorf("ValidUsername(%q) = %v, want %v", tt.username, got, tt.valid)
			}
		})
	}
}

func validSignUp() SignUpDraft {
	return SignUpDraft{
		Name:            "Ana",
		LastName:        "Reyes",
		Email:           "ana@example.com",
		Password:        "hunter2hunter2",
		ConfirmPassword: "hunter2hunter2",
		Phone:           "5512345678",
		Username:        "anareyes99",
	}
}

func TestSignUpDraftValidate(t *testing.T) {
	if msg := validSignUp().Validate(); msg != "" {
		t.Fatalf("valid draft rejected: %q", msg)
	}

	tests := []struct {
		name   string
		mutate func(*SignUpDraft)
		want   string
	}{
		{"missing name", func(d *SignUpDraft) { d.Name = "" }, "name is required"},
		{"missing last name", func(d *SignUpDraft) { d.LastName = " " }, "last name is required"},
		{"bad email", func(d *SignUpDraft) { d.Email = "ana.example.com" }, "a valid email is required"},
		{"short password", func(d *SignUpDraft) { d.Password = "short"; d.ConfirmPassword = "short" }, "password must be at least 8 characters"},
		{"mismatched confirmation", func(d *SignUpDraft) { d.ConfirmPassword = "different1" }, "passwords do not match"},
		{"short phone", func(d *SignUpDraft) { d.Phone = "12345" }, "phone must be exactly 10 digits"},
		{"short username", func(d *SignUpDraft) { d.Username = "ana" }, "username must be 8-12 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validSignUp()
			tt.mutate(&d)
			if got := d.Validate(); got != tt.want {
				t.Errorf("Validate() = %q, want %q", got, tt.want)
			}
		})
	}
}
