// Package ledger submits collection, mint and transfer transactions.
package ledger

//go:generate mockgen -destination ../mocks/ledger/ledger.go -package mocks gamevault.dev/mint-go/internal/ledger Client

import (
	"context"
	"errors"

	"gamevault.dev/mint-go/pkg/types"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownSerial     = errors.New("unknown serial number")
	ErrNotAssociated     = errors.New("account not associated with token")
	ErrSupplyExhausted   = errors.New("collection max supply reached")
)

// CollectionConfig describes a new NFT collection.
type CollectionConfig struct {
	Name      string
	Symbol    string
	MaxSupply int64
}

type MintReceipt struct {
	Serial        int64
	TransactionID string
}

// Client submits transactions to the ledger. Mint always mints to the
// treasury account; a Transfer is needed to deliver the NFT.
type Client interface {
	CreateCollection(context.Context, CollectionConfig) (types.TokenID, error)
	Mint(ctx context.Context, collection types.TokenID, metadata []byte) (MintReceipt, error)
	// Transfer moves an NFT from the treasury to the recipient, and
	// returns the transaction id.
	Transfer(ctx context.Context, collection types.TokenID, serial int64, to types.AccountID) (string, error)
	Close() error
}
