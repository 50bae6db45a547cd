package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Mirrors the registration payload shape
type registerTestRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin cliente"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeEmail bool, includePassword bool) bool {
			reqMap := make(map[string]interface{})
			if includeEmail {
				reqMap["email"] = "ana@example.com"
			}
			if includePassword {
				reqMap["password"] = "secret123"
			}

			allFieldsPresent := includeEmail && includePassword

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/usuarios/register", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq registerTestRequest
			err := DecodeAndValidate(req, &testReq)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrors(t *testing.T) {
	reqBody := []byte(`{"email": "not-an-email", "password": "short"}`)
	req := httptest.NewRequest("POST", "/usuarios/register", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	var testReq registerTestRequest
	err := DecodeAndValidate(req, &testReq)
	if err == nil {
		t.Fatal("expected a validation error")
	}

	validationErrors := FormatValidationErrors(err)
	if len(validationErrors) != 2 {
		t.Fatalf("expected 2 validation errors, got %d: %v", len(validationErrors), validationErrors)
	}
	for _, ve := range validationErrors {
		if ve.Field == "" || ve.Message == "" {
			t.Errorf("validation error missing field or message: %+v", ve)
		}
	}
}

func TestRoleOneOfValidation(t *testing.T) {
	tests := []struct {
		role    string
		wantErr bool
	}{
		{role: "admin", wantErr: false},
		{role: "cliente", wantErr: false},
		{role: "", wantErr: false},
		{role: "moderador", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("role "+tt.role, func(t *testing.T) {
			req := registerTestRequest{
				Email:    "ana@example.com",
				Password: "secret123",
				Role:     tt.role,
			}
			err := ValidateRequest(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequest with role %q: err = %v, wantErr %v", tt.role, err, tt.wantErr)
			}
		})
	}
}

func TestDecodeAndValidateRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/usuarios/register", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	var testReq registerTestRequest
	if err := DecodeAndValidate(req, &testReq); err == nil {
		t.Error("expected a decode error")
	}
}
