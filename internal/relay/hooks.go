package relay

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPHookDispatcher posts extracted hook data to a configured endpoint.
// Enabling it is an explicit operator decision: relayed messages are
// permissionless, so a caller can consume a message's nonce while the hook
// delivery fails, and the hook is then lost for good.
type HTTPHookDispatcher struct {
	endpoint string
	client   *http.Client
}

// NewHTTPHookDispatcher creates a dispatcher posting to endpoint.
func NewHTTPHookDispatcher(endpoint string, timeout time.Duration) *HTTPHookDispatcher {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPHookDispatcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Dispatch posts the hook target and payload as JSON. One shot, no retry.
func (d *HTTPHookDispatcher) Dispatch(ctx context.Context, target, payload []byte) error {
	body, err := json.Marshal(struct {
		Target  string `json:"target"`
		Payload string `json:"payload"`
	}{hex.EncodeToString(target), hex.EncodeToString(payload)})
	if err != nil {
		return fmt.Errorf("failed to encode hook: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build hook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("hook call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
