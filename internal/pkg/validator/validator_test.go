package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	for input, want := range map[string]bool{"": true, "   ": true, "abc": false, " abc ": false} {
		if got := IsEmpty(input); got != want {
			t.Errorf("IsEmpty(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestLayouts(t *testing.T) {
	cases := []struct {
		name    string
		fn      func(string) (any, bool)
		valid   []string
		invalid []string
	}{
		{
			name:    "date",
			fn:      func(s string) (any, bool) { return IsValidDate(s) },
			valid:   []string{"2023-01-01", "2000-12-31"},
			invalid: []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""},
		},
		{
			name:    "month",
			fn:      func(s string) (any, bool) { return IsValidMonth(s) },
			valid:   []string{"2024-01", "1999-12"},
			invalid: []string{"2024-13", "2024-1-01", "2024/01", "", "2024-01-01"},
		},
		{
			name:    "clock",
			fn:      func(s string) (any, bool) { return IsValidClock(s) },
			valid:   []string{"09:00", "17:30", "00:00", "23:59"},
			invalid: []string{"24:00", "9am", "", "12:60"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, s := range c.valid {
				if _, ok := c.fn(s); !ok {
					t.Errorf("%q rejected", s)
				}
			}
			for _, s := range c.invalid {
				if _, ok := c.fn(s); ok {
					t.Errorf("%q accepted", s)
				}
			}
		})
	}
}

func TestCoordinateBounds(t *testing.T) {
	if !IsValidLatitude(90) || !IsValidLatitude(-90) || IsValidLatitude(90.0001) {
		t.Errorf("latitude bounds are wrong")
	}
	if !IsValidLongitude(180) || !IsValidLongitude(-180) || IsValidLongitude(-180.5) {
		t.Errorf("longitude bounds are wrong")
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"081234567890", "+15551234567", "08-1234-567890", "08 1234 567890"}
	invalid := []string{"1234567", "1234567890123456", "abc0812345678", "0812345678a", "++0812345678", ""}
	for _, phone := range valid {
		if !IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = false, want true", phone)
		}
	}
	for _, phone := range invalid {
		if IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = true, want false", phone)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Err() != nil {
		t.Fatalf("empty ValidationErrors.Err() should be nil")
	}

	errs.Add("email", "invalid")
	errs.Add("phone", "required")
	if errs.Err() == nil {
		t.Fatalf("non-empty ValidationErrors.Err() should not be nil")
	}
	if got, want := errs.Error(), "email: invalid; phone: required"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := errs.ToMap()["phone"]; got != "required" {
		t.Errorf("ToMap()[phone] = %q", got)
	}
}
