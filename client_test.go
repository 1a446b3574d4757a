package kiturami

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joshp123/kiturami/internal/session"
)

func testConfig(baseURL string) Config {
	noDelay := time.Duration(0)
	return Config{
		BaseURL:      baseURL,
		MemberID:     "user@example.com",
		Password:     "hunter2",
		RequestDelay: &noDelay,
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(testConfig(baseURL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestReauthRetryFlow(t *testing.T) {
	var listRequests int
	var listAuthKeys []string
	var loginBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/member/login":
			body, _ := io.ReadAll(r.Body)
			loginBody = string(body)
			w.Header().Set("Content-Type", "text/json")
			_, _ = io.WriteString(w, `{"authKey":"abc"}`)
		case "/member/getMemberDeviceList":
			listRequests++
			listAuthKeys = append(listAuthKeys, r.Header.Get("AUTH-KEY"))
			if listRequests == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "text/json")
			_, _ = io.WriteString(w, `{"memberDeviceList":[{"nodeId":"n1","parentId":"1","alias":"Boiler"}]}`)
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	devices, err := client.DeviceList(context.Background())
	if err != nil {
		t.Fatalf("DeviceList: %v", err)
	}
	if len(devices) != 1 || devices[0].NodeID != "n1" {
		t.Fatalf("unexpected devices: %+v", devices)
	}

	if listRequests != 2 {
		t.Fatalf("expected exactly 2 device list requests, got %d", listRequests)
	}
	if listAuthKeys[0] != "" {
		t.Fatalf("expected empty AUTH-KEY before login, got %q", listAuthKeys[0])
	}
	if listAuthKeys[1] != "abc" {
		t.Fatalf("expected AUTH-KEY abc on retry, got %q", listAuthKeys[1])
	}
	if client.AuthKey() != "abc" {
		t.Fatalf("expected stored auth key abc, got %q", client.AuthKey())
	}

	sum := sha256.Sum256([]byte("hunter2"))
	digest := hex.EncodeToString(sum[:])
	if !strings.Contains(loginBody, digest) {
		t.Fatalf("expected hashed password in login body, got %s", loginBody)
	}
	if strings.Contains(loginBody, "hunter2") {
		t.Fatalf("plaintext password transmitted: %s", loginBody)
	}
	if !strings.Contains(loginBody, `"memberId":"user@example.com"`) {
		t.Fatalf("expected memberId in login body, got %s", loginBody)
	}
}

func TestPostNoRetryWhenLoginFails(t *testing.T) {
	var listRequests int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/member/login":
			w.Header().Set("Content-Type", "text/json")
			_, _ = io.WriteString(w, `{"message":"bad credentials"}`)
		case "/member/getMemberDeviceList":
			listRequests++
			w.WriteHeader(http.StatusInternalServerError)
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.DeviceList(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	var missing MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.Field != "authKey" {
		t.Fatalf("unexpected missing field: %s", missing.Field)
	}
	if listRequests != 1 {
		t.Fatalf("expected no retry after failed login, got %d requests", listRequests)
	}
}

func TestPostAtMostOneRetry(t *testing.T) {
	var listRequests int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/member/login":
			w.Header().Set("Content-Type", "text/json")
			_, _ = io.WriteString(w, `{"authKey":"abc"}`)
		case "/member/getMemberDeviceList":
			listRequests++
			w.WriteHeader(http.StatusUnauthorized)
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// The retry also fails with an empty body; its decode error is all
	// the caller sees, and no further retries happen.
	if _, err := client.DeviceList(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if listRequests != 2 {
		t.Fatalf("expected exactly 2 requests, got %d", listRequests)
	}
}

func TestDeviceInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/device/getDeviceInfo" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["nodeId"] != "n1" || payload["parentId"] != "1" {
			t.Fatalf("unexpected payload: %v", payload)
		}
		w.Header().Set("Content-Type", "text/json")
		_, _ = io.WriteString(w, `{"deviceSlaveInfo":[{"slaveId":"01","alias":"Living"}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	slaves, err := client.DeviceInfo(context.Background(), "n1")
	if err != nil {
		t.Fatalf("DeviceInfo: %v", err)
	}
	if len(slaves) != 1 || slaves[0].SlaveID != "01" {
		t.Fatalf("unexpected slaves: %+v", slaves)
	}
}

func TestDeviceListMissingField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/json")
		_, _ = io.WriteString(w, `{"something":"else"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.DeviceList(context.Background())
	var missing MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.Field != "memberDeviceList" {
		t.Fatalf("unexpected missing field: %s", missing.Field)
	}
}

func TestNotices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notice/getNoticeIos" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/json")
		_, _ = io.WriteString(w, `{"notice":"maintenance window"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	raw, err := client.Notices(context.Background())
	if err != nil {
		t.Fatalf("Notices: %v", err)
	}
	if !strings.Contains(string(raw), "maintenance window") {
		t.Fatalf("unexpected notices: %s", raw)
	}
}

func TestStoreSeedsClientAndPersistsLogin(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	store, err := session.NewStore(statePath, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	seed := session.State{MemberID: "user@example.com", AuthKey: "seeded"}
	if err := store.Save(context.Background(), seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/member/login" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/json")
		_, _ = io.WriteString(w, `{"authKey":"fresh"}`)
	}))
	defer server.Close()

	client, err := NewClientWithStore(testConfig(server.URL), store)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.AuthKey() != "seeded" {
		t.Fatalf("expected seeded auth key, got %q", client.AuthKey())
	}

	if _, err := client.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if client.AuthKey() != "fresh" {
		t.Fatalf("expected fresh auth key after login, got %q", client.AuthKey())
	}

	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.AuthKey != "fresh" {
		t.Fatalf("expected persisted auth key fresh, got %q", state.AuthKey)
	}
}

func TestStoreIgnoredForOtherMember(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	store, err := session.NewStore(statePath, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	seed := session.State{MemberID: "someone-else@example.com", AuthKey: "seeded"}
	if err := store.Save(context.Background(), seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	client, err := NewClientWithStore(testConfig("http://127.0.0.1:0"), store)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.AuthKey() != "" {
		t.Fatalf("expected empty auth key for a different member, got %q", client.AuthKey())
	}
}

func TestContentTypeHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json; charset=UTF-8" {
			t.Fatalf("unexpected content type: %q", got)
		}
		w.Header().Set("Content-Type", "text/json")
		_, _ = io.WriteString(w, `{"authKey":"k"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	if _, err := client.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
}
