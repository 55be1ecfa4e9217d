package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseJSONOrError(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
		rec := httptest.NewRecorder()

		var p payload
		if !ParseJSONOrError(rec, r, &p) {
			t.Fatal("ParseJSONOrError() = false for valid JSON")
		}
		if p.Email != "a@b.co" {
			t.Errorf("email = %q", p.Email)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()

		var p payload
		if ParseJSONOrError(rec, r, &p) {
			t.Fatal("ParseJSONOrError() = true for malformed JSON")
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}

		var resp Response
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Message != "Invalid request body" {
			t.Errorf("message = %q", resp.Message)
		}
	})
}

func TestRequireEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"first.last@sub.example.co", true},
		{"", false},
		{"plainstring", false},
		{"missing@tld", false},
		{"spaces in@example.com", false},
		{"@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if got := RequireEmail(rec, tt.email); got != tt.valid {
				t.Errorf("RequireEmail(%q) = %v, want %v", tt.email, got, tt.valid)
			}
			if !tt.valid && rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRequireValidators(t *testing.T) {
	rec := httptest.NewRecorder()
	if RequireNonEmpty(rec, "", "firstName") {
		t.Error("RequireNonEmpty() = true for empty value")
	}
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "firstName is required" {
		t.Errorf("message = %q", resp.Message)
	}

	rec = httptest.NewRecorder()
	if RequireMinLength(rec, "short", "password", 8) {
		t.Error("RequireMinLength() = true for a short value")
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "password must be at least 8 characters" {
		t.Errorf("message = %q", resp.Message)
	}

	rec = httptest.NewRecorder()
	if !RequireMinLength(rec, "long enough", "password", 8) {
		t.Error("RequireMinLength() = false for a valid value")
	}
}
