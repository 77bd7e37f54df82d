package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAsset_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/assets", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"asset_ref":"745123"}`))
	}))
	defer srv.Close()

	client := &HTTPClient{BaseURL: srv.URL, APIKey: "test-key"}
	ref, err := client.CreateAsset(context.Background(), CreateAssetParams{
		Name:        "Langs Maize Token",
		UnitName:    "LANMAI",
		TotalSupply: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, AssetRef("745123"), ref)
}

func TestCreateAsset_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient funds", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := &HTTPClient{BaseURL: srv.URL}
	_, err := client.CreateAsset(context.Background(), CreateAssetParams{Name: "x", TotalSupply: 1})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIndeterminate)
}

func TestCreateAsset_TimeoutIsIndeterminate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := &HTTPClient{BaseURL: srv.URL}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.CreateAsset(ctx, CreateAssetParams{Name: "x", TotalSupply: 1})
	assert.ErrorIs(t, err, ErrIndeterminate)
}

func TestTransfer_LocalValidation(t *testing.T) {
	client := &HTTPClient{BaseURL: "http://unused.invalid"}

	_, err := client.Transfer(context.Background(), TransferParams{
		Asset: "745123", From: "A", To: "A", Amount: 10,
	})
	assert.ErrorIs(t, err, ErrInvalidTransfer)

	_, err = client.Transfer(context.Background(), TransferParams{
		Asset: "745123", From: "A", To: "B", Amount: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidTransfer)
}

func TestTransfer_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/transfers", r.URL.Path)
		w.Write([]byte(`{"tx_ref":"TXN7H2"}`))
	}))
	defer srv.Close()

	client := &HTTPClient{BaseURL: srv.URL}
	ref, err := client.Transfer(context.Background(), TransferParams{
		Asset: "745123", From: "A", To: "B", Amount: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, TxRef("TXN7H2"), ref)
}
