package kiturami

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/joshp123/kiturami/internal/pace"
	"github.com/joshp123/kiturami/internal/session"
)

// Client talks to the Kiturami boiler API. It owns the account
// credentials and the session auth key; every authenticated call that
// comes back non-200 or empty triggers exactly one re-login and retry.
type Client struct {
	baseURL  string
	memberID string
	password string

	httpClient *http.Client
	pacer      *pace.Pacer
	store      *session.Store

	mu      sync.Mutex
	authKey string

	// nodeID is part of the vendor's session contract but nothing in
	// the API reads it back after assignment.
	nodeID string
}

func NewClient(cfg Config) (*Client, error) {
	return NewClientWithStore(cfg, nil)
}

// NewClientWithStore seeds the session from a persisted auth key when
// the store holds one for this account.
func NewClientWithStore(cfg Config, store *session.Store) (*Client, error) {
	if strings.TrimSpace(cfg.MemberID) == "" {
		return nil, fmt.Errorf("kiturami member id is required")
	}
	password, err := cfg.password()
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	c := &Client{
		baseURL:  baseURL,
		memberID: cfg.MemberID,
		password: password,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		pacer: pace.New("kiturami", cfg.requestDelay()),
		store: store,
	}

	if store != nil {
		if state, err := store.Load(context.Background()); err == nil && state.MemberID == cfg.MemberID {
			c.authKey = state.AuthKey
		} else if err != nil && !errors.Is(err, session.ErrStateNotFound) {
			return nil, err
		}
	}

	return c, nil
}

// AuthKey returns the current session token, empty before first login.
func (c *Client) AuthKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authKey
}

func (c *Client) setAuthKey(key string) {
	c.mu.Lock()
	c.authKey = key
	c.mu.Unlock()
}

// Login hashes the password and exchanges the credentials for a fresh
// auth key. The plaintext password is never transmitted.
func (c *Client) Login(ctx context.Context) (string, error) {
	sum := sha256.Sum256([]byte(c.password))
	payload := map[string]string{
		"memberId": c.memberID,
		"password": hex.EncodeToString(sum[:]),
	}

	resp, err := c.rawRequest(ctx, "/member/login", payload)
	if err != nil {
		return "", err
	}

	var result loginResponse
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return "", fmt.Errorf("decode /member/login: %w", err)
	}
	if result.AuthKey == "" {
		return "", MissingFieldError{Endpoint: "/member/login", Field: "authKey"}
	}

	c.setAuthKey(result.AuthKey)
	if c.store != nil {
		// Best effort; persistence failures are reported via metrics.
		_ = c.store.Save(ctx, session.State{MemberID: c.memberID, AuthKey: result.AuthKey})
	}
	return result.AuthKey, nil
}

// DeviceList fetches the controllers registered to the account.
func (c *Client) DeviceList(ctx context.Context) ([]Device, error) {
	var resp deviceListResponse
	if err := c.PostJSON(ctx, "/member/getMemberDeviceList", map[string]string{"parentId": "1"}, &resp); err != nil {
		return nil, err
	}
	if resp.MemberDeviceList == nil {
		return nil, MissingFieldError{Endpoint: "/member/getMemberDeviceList", Field: "memberDeviceList"}
	}
	return *resp.MemberDeviceList, nil
}

// DeviceInfo fetches the zone controllers below a node.
func (c *Client) DeviceInfo(ctx context.Context, nodeID string) ([]SlaveInfo, error) {
	payload := map[string]string{
		"nodeId":   nodeID,
		"parentId": "1",
	}
	var resp deviceInfoResponse
	if err := c.PostJSON(ctx, "/device/getDeviceInfo", payload, &resp); err != nil {
		return nil, err
	}
	if resp.DeviceSlaveInfo == nil {
		return nil, MissingFieldError{Endpoint: "/device/getDeviceInfo", Field: "deviceSlaveInfo"}
	}
	return *resp.DeviceSlaveInfo, nil
}

// Notices fetches the vendor notice feed.
func (c *Client) Notices(ctx context.Context) (json.RawMessage, error) {
	body, err := c.Post(ctx, "/notice/getNoticeIos", map[string]string{})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Post issues an authenticated request. A non-200 status or empty body
// triggers one re-login; if that login succeeds the request is retried
// exactly once, and the retry's body is returned whatever its status. A
// successful-but-empty response after the retry is therefore
// indistinguishable from a failed retry; callers see whatever the second
// body decodes to.
func (c *Client) Post(ctx context.Context, path string, payload any) ([]byte, error) {
	resp, err := c.rawRequest(ctx, path, payload)
	if err != nil {
		return nil, err
	}

	if resp.status != http.StatusOK || len(resp.body) == 0 {
		if _, err := c.Login(ctx); err != nil {
			return nil, err
		}
		resp, err = c.rawRequest(ctx, path, payload)
		if err != nil {
			return nil, err
		}
	}

	return resp.body, nil
}

// PostJSON issues an authenticated request and decodes the response
// body. The server declares text/json, so the body is decoded directly
// rather than trusting the media type.
func (c *Client) PostJSON(ctx context.Context, path string, payload, out any) error {
	body, err := c.Post(ctx, path, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

type rawResponse struct {
	status int
	body   []byte
}

func (c *Client) rawRequest(ctx context.Context, path string, payload any) (rawResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return rawResponse{}, fmt.Errorf("encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return rawResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("AUTH-KEY", c.AuthKey())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rawResponse{}, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return rawResponse{}, fmt.Errorf("read %s: %w", path, err)
	}

	c.pacer.Record(resp.StatusCode)
	if err := c.pacer.Wait(ctx); err != nil {
		return rawResponse{}, err
	}

	return rawResponse{status: resp.StatusCode, body: body}, nil
}
