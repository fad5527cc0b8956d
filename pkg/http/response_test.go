package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "reserva/pkg/errors"
)

func TestWriteError_UsesAppErrorStatus(t *testing.T) {
	cases := []struct {
		name       string
		err        *apperrors.AppError
		wantStatus int
	}{
		{"not found", apperrors.NotFound("Booking"), http.StatusNotFound},
		{"validation", apperrors.Validation("bad input", nil), http.StatusUnprocessableEntity},
		{"conflict", apperrors.Conflict("slot taken"), http.StatusConflict},
		{"locked", apperrors.Locked("slot being booked"), http.StatusLocked},
		{"missing key", apperrors.MissingIdempotencyKey(), http.StatusBadRequest},
		{"unavailable", apperrors.Unavailable("Idempotency Store"), http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)
			if rec.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if resp.Error != tc.err.Message {
				t.Errorf("expected message %q, got %q", tc.err.Message, resp.Error)
			}
		})
	}
}

func TestWriteError_LockedSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, apperrors.Locked("slot being booked"))
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("expected Retry-After 1, got %q", got)
	}
}

func TestWriteError_UnknownErrorBecomesInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("driver: bad connection"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("bad connection")) {
		t.Error("internal error details must not leak to clients")
	}
}

// The body written for a value must equal its plain marshalling, since
// idempotent replays store and replay those exact bytes.
func TestWriteJSON_BodyMatchesMarshal(t *testing.T) {
	payload := SuccessResponse{Data: map[string]string{"id": "abc"}}

	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, payload)

	want, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(rec.Body.Bytes(), want) {
		t.Errorf("body differs from marshalled payload:\nwant %s\ngot  %s", want, rec.Body.Bytes())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
}
