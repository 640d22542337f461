package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"lifepath/internal/game"
)

func TestWriteDomainErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{game.ErrOnCooldown, http.StatusTooManyRequests},
		{game.ErrAlreadyResolved, http.StatusConflict},
		{game.ErrDecisionMismatch, http.StatusBadRequest},
		{game.ErrInvalidTemplate, http.StatusBadRequest},
		{game.ErrUnknownStat, http.StatusBadRequest},
		{game.ErrStateNotFound, http.StatusNotFound},
		{game.ErrProfileNotFound, http.StatusNotFound},
		{game.ErrTemplateNotFound, http.StatusNotFound},
		{game.ErrDecisionNotFound, http.StatusNotFound},
		{game.ErrEventNotFound, http.StatusNotFound},
		{fmt.Errorf("resolve: %w", game.ErrAlreadyResolved), http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		writeDomainError(rec, tc.err)
		if rec.Code != tc.want {
			t.Fatalf("%v mapped to %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"  Bearer   abc  ", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := bearerToken(tc.header); got != tc.want {
			t.Fatalf("bearerToken(%q) = %q want %q", tc.header, got, tc.want)
		}
	}
}
