package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/timehub/internal/domain/timelog"
	"github.com/geocoder89/timehub/internal/http/handlers"
	"github.com/geocoder89/timehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			JSON   string                `json:"json"`
			Field  string                `json:"field"`
			Fields []handlers.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/signup", func(ctx *gin.Context) {
		var req handlers.SignUpRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString(`{"email":"nope","password":"short","role":"admin"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Error.Code != "invalid_request" {
		t.Fatalf("unexpected code: %s", resp.Error.Code)
	}

	wantRules := map[string]string{
		"email":    "email",
		"password": "min",
		"fullName": "required",
		"role":     "oneof",
	}

	found := map[string]handlers.FieldError{}
	for _, fieldErr := range resp.Error.Details.Fields {
		found[fieldErr.Field] = fieldErr
	}

	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, resp.Error.Details.Fields)
		}
		if fieldErr.Rule != rule {
			t.Fatalf("field %q rule mismatch: got %q want %q", field, fieldErr.Rule, rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/time-logs", func(ctx *gin.Context) {
		var req timelog.CreateTimeLogRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	body := `{"projectId":42,"hours":1.5,"date":"2026-03-01"}`
	req := httptest.NewRequest(http.MethodPost, "/time-logs", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", resp.Error.Details.JSON)
	}
	if resp.Error.Details.Field != "projectId" {
		t.Fatalf("expected detail field to be projectId, got %q", resp.Error.Details.Field)
	}
	if len(resp.Error.Details.Fields) == 0 {
		t.Fatalf("expected at least one field error in details.fields")
	}

	fieldErr := resp.Error.Details.Fields[0]
	if fieldErr.Field != "projectId" {
		t.Fatalf("expected fields[0].field=projectId, got %q", fieldErr.Field)
	}
	if fieldErr.Rule != "type" {
		t.Fatalf("expected fields[0].rule=type, got %q", fieldErr.Rule)
	}
	if fieldErr.Message == "" {
		t.Fatalf("expected non-empty fields[0].message")
	}
}

func postTimeLog(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, bindErrorResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/time-logs", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp bindErrorResponse
	if w.Code != http.StatusCreated {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
		}
	}
	return w, resp
}

func timeLogRouter(maxBody int64) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middlewares.MaxBodyBytes(maxBody))
	r.POST("/time-logs", func(ctx *gin.Context) {
		var req timelog.CreateTimeLogRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
	return r
}

func TestBindJSON_TimeLogFields(t *testing.T) {
	r := timeLogRouter(1 << 20)

	tests := []struct {
		name        string
		body        string
		wantField   string
		wantRule    string
		wantMessage string
	}{
		{
			name:        "project id not a uuid",
			body:        `{"projectId":"nope","hours":1.5,"date":"2026-03-01"}`,
			wantField:   "projectId",
			wantRule:    "uuid",
			wantMessage: "must be a valid UUID",
		},
		{
			name:        "hours not a number",
			body:        `{"projectId":"1b4e28ba-2fa1-11d2-883f-0016d3cca427","hours":"lots","date":"2026-03-01"}`,
			wantField:   "hours",
			wantRule:    "type",
			wantMessage: "must be a decimal number",
		},
		{
			name:        "hours an object",
			body:        `{"projectId":"1b4e28ba-2fa1-11d2-883f-0016d3cca427","hours":{},"date":"2026-03-01"}`,
			wantField:   "hours",
			wantRule:    "type",
			wantMessage: "must be a decimal number",
		},
		{
			name:        "notes too long",
			body:        `{"projectId":"1b4e28ba-2fa1-11d2-883f-0016d3cca427","hours":1,"date":"2026-03-01","notes":"` + strings.Repeat("n", 2001) + `"}`,
			wantField:   "notes",
			wantRule:    "max",
			wantMessage: "must be at most 2000 characters",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := postTimeLog(t, r, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
			}
			if len(resp.Error.Details.Fields) != 1 {
				t.Fatalf("expected one field error, got %+v", resp.Error.Details.Fields)
			}

			got := resp.Error.Details.Fields[0]
			if got.Field != tc.wantField || got.Rule != tc.wantRule || got.Message != tc.wantMessage {
				t.Fatalf("got %+v, want field=%s rule=%s message=%q", got, tc.wantField, tc.wantRule, tc.wantMessage)
			}
		})
	}

	// quoted decimals still bind
	w, _ := postTimeLog(t, r, `{"projectId":"1b4e28ba-2fa1-11d2-883f-0016d3cca427","hours":"1.25","date":"2026-03-01"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}
}

func TestBindJSON_EmptyBody(t *testing.T) {
	r := timeLogRouter(1 << 20)

	w, resp := postTimeLog(t, r, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}
	if resp.Error.Details.JSON != "empty_body" {
		t.Fatalf("expected empty_body, got %q", resp.Error.Details.JSON)
	}
}

func TestBindJSON_BodyTooLarge(t *testing.T) {
	r := timeLogRouter(64)

	body := `{"projectId":"1b4e28ba-2fa1-11d2-883f-0016d3cca427","hours":1,"date":"2026-03-01","notes":"` + strings.Repeat("n", 100) + `"}`

	// declared length is refused up front
	w, resp := postTimeLog(t, r, body)
	if w.Code != http.StatusRequestEntityTooLarge || resp.Error.Code != "payload_too_large" {
		t.Fatalf("got status %d code %q, want 413 payload_too_large", w.Code, resp.Error.Code)
	}

	// unknown length trips the reader limit during bind
	req := httptest.NewRequest(http.MethodPost, "/time-logs", io.MultiReader(strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusRequestEntityTooLarge, w.Body.String())
	}
}
