package device

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flysto/syncpanel/internal/srv/config"
	"github.com/flysto/syncpanel/internal/srv/event"
)

const testApiKey = "secret"

func newTestApi(t *testing.T) (*Api, *httptest.Server) {
	t.Helper()

	serverConfig := &config.ServerConfig{
		ServerParam: &config.ServerParam{
			ApiParam: config.ApiParam{Enabled: true, SslPort: 6063, ApiKey: testApiKey},
		},
	}
	api := NewApi(serverConfig)
	ts := httptest.NewServer(api.router)
	t.Cleanup(ts.Close)
	return api, ts
}

func apiRequest(t *testing.T, method, url, key, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatal(err)
	}
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	return resp
}

func TestApiRejectsWrongKey(t *testing.T) {
	_, ts := newTestApi(t)

	if resp := apiRequest(t, "GET", ts.URL+"/api/is_alive", "", ""); resp.StatusCode != http.StatusForbidden {
		t.Errorf("no key: status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
	if resp := apiRequest(t, "GET", ts.URL+"/api/is_alive", "wrong", ""); resp.StatusCode != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
	if resp := apiRequest(t, "GET", ts.URL+"/api/is_alive", testApiKey, ""); resp.StatusCode != http.StatusOK {
		t.Errorf("good key: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestApiStatusValidation(t *testing.T) {
	_, ts := newTestApi(t)

	// Invalid payloads are refused before anything reaches the event loop,
	// so no consumer is needed.
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"message":"3 of 12"}`},
		{"progress above one", `{"title":"Upload","progress":1.5}`},
		{"progress below zero", `{"title":"Upload","progress":-0.1}`},
		{"malformed json", `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := apiRequest(t, "POST", ts.URL+"/api/status", testApiKey, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestApiStatusAccepted(t *testing.T) {
	api, ts := newTestApi(t)

	got := make(chan event.ApiEvent, 1)
	go func() {
		ev := <-api.eventChannel
		got <- ev
		ev.Result <- nil
	}()

	resp := apiRequest(t, "POST", ts.URL+"/api/status", testApiKey, `{"title":"Upload","message":"3 of 12","progress":0.25}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	ev := <-got
	data, ok := ev.Data.(event.ApiEventStatusUpdateData)
	if !ok {
		t.Fatalf("event data = %T, want ApiEventStatusUpdateData", ev.Data)
	}
	if data.Status.Title != "Upload" || data.Status.Message != "3 of 12" {
		t.Errorf("status = %+v", data.Status)
	}
	if data.Status.Progress == nil || *data.Status.Progress != 0.25 {
		t.Errorf("progress = %v, want 0.25", data.Status.Progress)
	}
}

func TestApiClear(t *testing.T) {
	api, ts := newTestApi(t)

	go func() {
		ev := <-api.eventChannel
		ev.Result <- nil
	}()

	if resp := apiRequest(t, "POST", ts.URL+"/api/clear", testApiKey, ""); resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}
