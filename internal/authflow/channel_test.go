package authflow

import (
	"errors"
	"strings"
	"testing"
)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantCode string
		wantErr  error
	}{
		{
			name:     "success message",
			raw:      `{"type":"success","data":"CODE1"}`,
			wantCode: "CODE1",
		},
		{
			name:    "failure type",
			raw:     `{"type":"denied","data":"whatever"}`,
			wantErr: ErrDenied,
		},
		{
			name:    "missing type",
			raw:     `{"data":"CODE1"}`,
			wantErr: ErrMalformedMessage,
		},
		{
			name:    "non-string data",
			raw:     `{"type":"success","data":42}`,
			wantErr: ErrMalformedMessage,
		},
		{
			name:    "null data",
			raw:     `{"type":"success"}`,
			wantErr: ErrMalformedMessage,
		},
		{
			name:    "empty code",
			raw:     `{"type":"success","data":""}`,
			wantErr: ErrMalformedMessage,
		},
		{
			name:    "not json",
			raw:     `hello`,
			wantErr: ErrMalformedMessage,
		},
		{
			name:    "json array",
			raw:     `["success","CODE1"]`,
			wantErr: ErrMalformedMessage,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := ParseMessage([]byte(test.raw))

			if test.wantErr != nil {
				if result.Success() {
					t.Fatalf("expected failure, got code %q", result.Code)
				}
				if !errors.Is(result.Err, test.wantErr) {
					t.Errorf("error = %v, expected %v", result.Err, test.wantErr)
				}
				return
			}

			if !result.Success() {
				t.Fatalf("expected success, got error: %v", result.Err)
			}
			if result.Code != test.wantCode {
				t.Errorf("code = %q, expected %q", result.Code, test.wantCode)
			}
		})
	}
}

func TestBuildAuthorizeURL(t *testing.T) {
	authorizeURL, err := BuildAuthorizeURL("", AuthorizeParams{
		ClientID:    "client-1",
		RedirectURI: "http://127.0.0.1:5173/callback",
		Scopes:      []string{"playlist-read-private", "streaming"},
		State:       "random-state",
	})
	if err != nil {
		t.Fatalf("BuildAuthorizeURL failed: %v", err)
	}

	state, err := stateFromAuthorizeURL(authorizeURL)
	if err != nil {
		t.Fatalf("stateFromAuthorizeURL failed: %v", err)
	}
	if state != "random-state" {
		t.Errorf("state round trip = %q, expected %q", state, "random-state")
	}

	for _, fragment := range []string{
		"https://accounts.spotify.com/authorize?",
		"client_id=client-1",
		"response_type=code",
		"show_dialog=false",
		"playlist-read-private",
	} {
		if !strings.Contains(authorizeURL, fragment) {
			t.Errorf("authorize URL missing %q: %s", fragment, authorizeURL)
		}
	}
}
