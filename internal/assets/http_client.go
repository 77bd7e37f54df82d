package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPClient is a Ledger backed by the asset gateway's REST API (the service
// that signs and submits Algorand transactions on the platform's behalf).
type HTTPClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

type createAssetRequest struct {
	Name        string   `json:"name"`
	UnitName    string   `json:"unit_name"`
	TotalSupply int64    `json:"total_supply"`
	Decimals    uint32   `json:"decimals"`
	Controllers []string `json:"controllers"`
}

type createAssetResponse struct {
	AssetRef string `json:"asset_ref"`
}

type transferRequest struct {
	AssetRef string `json:"asset_ref"`
	From     string `json:"from"`
	To       string `json:"to"`
	Amount   int64  `json:"amount"`
}

type transferResponse struct {
	TxRef string `json:"tx_ref"`
}

func (c *HTTPClient) CreateAsset(ctx context.Context, p CreateAssetParams) (AssetRef, error) {
	var out createAssetResponse
	if err := c.post(ctx, "/v1/assets", createAssetRequest{
		Name:        p.Name,
		UnitName:    p.UnitName,
		TotalSupply: p.TotalSupply,
		Decimals:    p.Decimals,
		Controllers: p.Controllers,
	}, &out); err != nil {
		return "", err
	}
	if out.AssetRef == "" {
		return "", fmt.Errorf("asset gateway: empty asset_ref in response")
	}
	return AssetRef(out.AssetRef), nil
}

func (c *HTTPClient) Transfer(ctx context.Context, p TransferParams) (TxRef, error) {
	if p.Amount <= 0 || p.From == p.To {
		return "", ErrInvalidTransfer
	}
	var out transferResponse
	if err := c.post(ctx, "/v1/transfers", transferRequest{
		AssetRef: string(p.Asset),
		From:     p.From,
		To:       p.To,
		Amount:   p.Amount,
	}, &out); err != nil {
		return "", err
	}
	if out.TxRef == "" {
		return "", fmt.Errorf("asset gateway: empty tx_ref in response")
	}
	return TxRef(out.TxRef), nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out interface{}) error {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if c.BaseURL == "" {
		return fmt.Errorf("asset gateway: ASSET_GATEWAY_URL is not set")
	}
	url := strings.TrimRight(c.BaseURL, "/") + path

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		// The request may have reached the gateway before the deadline or
		// cancellation hit, so the on-chain outcome is unknown.
		if isAmbiguous(err) {
			return fmt.Errorf("%w: %v", ErrIndeterminate, err)
		}
		return fmt.Errorf("asset gateway request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("asset gateway: status %d body: %s", resp.StatusCode, respBody)
	}
	return json.Unmarshal(respBody, out)
}

func isAmbiguous(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
