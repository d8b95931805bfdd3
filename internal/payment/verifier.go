package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/resellhub/storefront/internal/fault"
)

// Verifier checks payment intents against the payment provider.
type Verifier struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewVerifier(baseURL, apiKey string) *Verifier {
	return &Verifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Verify reports whether the payment intent has succeeded upstream. A
// provider error is distinct from a definite "not paid" answer.
func (v *Verifier) Verify(ctx context.Context, paymentIntentID string) (bool, error) {
	payload, err := json.Marshal(map[string]string{"paymentIntentId": paymentIntentID})
	if err != nil {
		return false, fmt.Errorf("marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/verify", bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: payment provider request: %v", fault.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: payment provider returned status %d", fault.ErrUpstream, resp.StatusCode)
	}

	var result struct {
		Verified bool   `json:"verified"`
		Error    string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("%w: decode verify response: %v", fault.ErrUpstream, err)
	}
	if result.Error != "" {
		return false, fmt.Errorf("%w: %s", fault.ErrVerificationFailed, result.Error)
	}
	return result.Verified, nil
}
