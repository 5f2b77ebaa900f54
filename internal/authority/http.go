package authority

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// newHTTPClient returns an HTTP client with sane timeouts.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// HTTPAuthority talks to the transmitter service over HTTP.
//
// ReceiveMessage is NOT retried: the transmitter consumes the message nonce
// on success, so a retry after an ambiguous failure could double-report.
// The caller decides whether to resubmit.
type HTTPAuthority struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAuthority creates an authority client for the given base URL.
func NewHTTPAuthority(baseURL string, timeout time.Duration) *HTTPAuthority {
	return &HTTPAuthority{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

type receiveRequest struct {
	Message     string `json:"message"`
	Attestation string `json:"attestation"`
}

type receiveResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// ReceiveMessage submits the message and attestation for verification and
// mint. Returns false when the transmitter rejects the message.
func (a *HTTPAuthority) ReceiveMessage(ctx context.Context, message, attestation []byte) (bool, error) {
	body, err := json.Marshal(receiveRequest{
		Message:     hex.EncodeToString(message),
		Attestation: hex.EncodeToString(attestation),
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode receive request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages/receive", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to build receive request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("transmitter call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("transmitter returned status %d", resp.StatusCode)
	}
	var out receiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("failed to decode transmitter response: %w", err)
	}
	return out.Success, nil
}

// HTTPToken talks to the funding-token service over HTTP. Reads are retried
// on transient failures; TransferFrom is not, for the same ambiguity reason
// as ReceiveMessage.
type HTTPToken struct {
	baseURL string
	client  *http.Client
}

// NewHTTPToken creates a token client for the given base URL.
func NewHTTPToken(baseURL string, timeout time.Duration) *HTTPToken {
	return &HTTPToken{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

// BalanceOf returns the account's balance in minor units.
func (t *HTTPToken) BalanceOf(ctx context.Context, account string) (uint64, error) {
	u := t.baseURL + "/v1/balance?account=" + url.QueryEscape(account)

	var out struct {
		Balance uint64 `json:"balance"`
	}
	status, body, err := doWithRetry(ctx, 3, time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return 0, nil, err
		}
		return drain(t.client.Do(req))
	})
	if err != nil {
		return 0, fmt.Errorf("balance call failed: %w", err)
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("token service returned status %d", status)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("failed to decode balance response: %w", err)
	}
	return out.Balance, nil
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// TransferFrom moves amount from one account to another. Returns false when
// the token refuses the transfer (insufficient balance or allowance).
func (t *HTTPToken) TransferFrom(ctx context.Context, from, to string, amount uint64) (bool, error) {
	body, err := json.Marshal(transferRequest{From: from, To: to, Amount: amount})
	if err != nil {
		return false, fmt.Errorf("failed to encode transfer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v1/transfer-from", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("token call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("token service returned status %d", resp.StatusCode)
	}
	var out struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("failed to decode transfer response: %w", err)
	}
	return out.Success, nil
}
