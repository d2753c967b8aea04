package authflow

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func startTestServer(t *testing.T, expectedState string) (*callbackServer, string) {
	t.Helper()

	server := newCallbackServer(0, expectedState) // random port

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	redirectURI, err := server.start(ctx)
	if err != nil {
		t.Fatalf("failed to start callback server: %v", err)
	}
	t.Cleanup(server.stop)

	return server, redirectURI
}

func waitForResult(t *testing.T, server *callbackServer) Result {
	t.Helper()

	select {
	case result := <-server.results():
		return result
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback result")
		return Result{}
	}
}

func TestCallbackServer_Redirect_Success(t *testing.T) {
	server, redirectURI := startTestServer(t, "state-1")

	resp, err := http.Get(redirectURI + "?code=CODE1&state=state-1")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	result := waitForResult(t, server)
	if !result.Success() {
		t.Fatalf("expected success, got: %v", result.Err)
	}
	if result.Code != "CODE1" {
		t.Errorf("code = %q, expected %q", result.Code, "CODE1")
	}
}

func TestCallbackServer_Redirect_ProviderError(t *testing.T) {
	server, redirectURI := startTestServer(t, "")

	resp, err := http.Get(redirectURI + "?error=access_denied")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	result := waitForResult(t, server)
	if result.Success() {
		t.Fatal("expected failure for provider error")
	}
	if !errors.Is(result.Err, ErrDenied) {
		t.Errorf("error = %v, expected ErrDenied", result.Err)
	}
}

func TestCallbackServer_Redirect_StateMismatch(t *testing.T) {
	server, redirectURI := startTestServer(t, "expected-state")

	resp, err := http.Get(redirectURI + "?code=CODE1&state=forged-state")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	result := waitForResult(t, server)
	if !errors.Is(result.Err, ErrStateMismatch) {
		t.Errorf("error = %v, expected ErrStateMismatch", result.Err)
	}
}

func TestCallbackServer_PostedMessage_Success(t *testing.T) {
	server, redirectURI := startTestServer(t, "")

	resp, err := http.Post(redirectURI, "application/json",
		strings.NewReader(`{"type":"success","data":"CODE2"}`))
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	result := waitForResult(t, server)
	if !result.Success() || result.Code != "CODE2" {
		t.Errorf("result = %+v, expected success with CODE2", result)
	}
}

func TestCallbackServer_PostedMessage_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing type", `{"data":"CODE"}`},
		{"non-string data", `{"type":"success","data":7}`},
		{"garbage", `%%%`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server, redirectURI := startTestServer(t, "")

			resp, err := http.Post(redirectURI, "application/json", strings.NewReader(test.body))
			if err != nil {
				t.Fatalf("callback request failed: %v", err)
			}
			resp.Body.Close()

			result := waitForResult(t, server)
			if result.Success() {
				t.Error("expected a malformed message to resolve to failure")
			}
		})
	}
}

func TestCallbackServer_AtMostOnceDelivery(t *testing.T) {
	server, redirectURI := startTestServer(t, "")

	first, err := http.Get(redirectURI + "?code=FIRST")
	if err != nil {
		t.Fatalf("first callback failed: %v", err)
	}
	first.Body.Close()

	result := waitForResult(t, server)
	if result.Code != "FIRST" {
		t.Fatalf("code = %q, expected FIRST", result.Code)
	}

	// A stray duplicate must be rejected and must not deliver again.
	second, err := http.Get(redirectURI + "?code=SECOND")
	if err == nil {
		if second.StatusCode != http.StatusBadRequest {
			t.Errorf("duplicate callback status = %d, expected 400", second.StatusCode)
		}
		second.Body.Close()
	}

	select {
	case extra := <-server.results():
		t.Errorf("unexpected second result: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCallbackServer_Cancel(t *testing.T) {
	server, _ := startTestServer(t, "")

	server.cancel(ErrReplaced)

	result := waitForResult(t, server)
	if !errors.Is(result.Err, ErrReplaced) {
		t.Errorf("error = %v, expected ErrReplaced", result.Err)
	}
}
