// Package assets is the boundary to the on-chain asset ledger. The core
// treats it as an opaque, fallible, possibly slow collaborator: create an
// asset, transfer units, nothing more. Blockchain mechanics stay behind the
// Ledger interface.
package assets

import "context"

// AssetRef is an opaque handle to an on-chain asset.
type AssetRef string

// TxRef is an opaque handle to a submitted transaction.
type TxRef string

// CreateAssetParams describe the asset minted at farm tokenization.
type CreateAssetParams struct {
	Name        string
	UnitName    string
	TotalSupply int64
	Decimals    uint32
	Controllers []string
}

// TransferParams move asset units between two addresses.
type TransferParams struct {
	Asset  AssetRef
	From   string
	To     string
	Amount int64
}

// Ledger is the consumed asset-ledger capability.
//
// CreateAsset is not idempotent: calling it twice mints two assets. Callers
// must persist the returned AssetRef immediately on success and guard against
// re-invocation. Both calls are network-bound; apply timeouts via ctx. A
// timeout after submission surfaces as ErrIndeterminate, never as success or
// plain failure.
type Ledger interface {
	CreateAsset(ctx context.Context, p CreateAssetParams) (AssetRef, error)
	Transfer(ctx context.Context, p TransferParams) (TxRef, error)
}
