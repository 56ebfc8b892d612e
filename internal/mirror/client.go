// Package mirror reads accounts, tokens and NFTs from a mirror node.
package mirror

//go:generate mockgen -destination ../mocks/mirror/mirror.go -package mocks gamevault.dev/mint-go/internal/mirror Client

import (
	"context"
	"errors"

	"gamevault.dev/mint-go/pkg/types"
)

var ErrNotFound = errors.New("not found")

type Balance struct {
	Balance   int64  `json:"balance"`
	Timestamp string `json:"timestamp"`
}

type AccountInfo struct {
	Account    types.AccountID `json:"account"`
	Alias      string          `json:"alias"`
	EVMAddress string          `json:"evm_address"`
	Balance    Balance         `json:"balance"`
	Deleted    bool            `json:"deleted"`
}

type TokenBalance struct {
	TokenID types.TokenID `json:"token_id"`
	Balance int64         `json:"balance"`
}

type NFT struct {
	AccountID         types.AccountID `json:"account_id"`
	TokenID           types.TokenID   `json:"token_id"`
	SerialNumber      int64           `json:"serial_number"`
	Metadata          string          `json:"metadata"` // base64
	CreatedTimestamp  string          `json:"created_timestamp"`
	ModifiedTimestamp string          `json:"modified_timestamp"`
	Deleted           bool            `json:"deleted"`
}

type TokenInfo struct {
	TokenID           types.TokenID   `json:"token_id"`
	Name              string          `json:"name"`
	Symbol            string          `json:"symbol"`
	Type              string          `json:"type"`
	TotalSupply       string          `json:"total_supply"`
	MaxSupply         string          `json:"max_supply"`
	SupplyType        string          `json:"supply_type"`
	TreasuryAccountID types.AccountID `json:"treasury_account_id"`
	CreatedTimestamp  string          `json:"created_timestamp"`
}

// Client is read-only access to an eventually consistent view of ledger
// state. Lookups of missing entities fail with ErrNotFound.
type Client interface {
	GetAccount(context.Context, types.AccountID) (AccountInfo, error)
	// All token balances of the account, i.e., the tokens it is
	// associated with.
	GetTokenBalances(context.Context, types.AccountID) ([]TokenBalance, error)
	// The NFTs of the given token currently owned by the account.
	GetOwnedNFTs(context.Context, types.AccountID, types.TokenID) ([]NFT, error)
	GetTokenInfo(context.Context, types.TokenID) (TokenInfo, error)
	GetNFT(context.Context, types.TokenID, int64) (NFT, error)
}

// IsAssociated reports whether the balances include the given token.
func IsAssociated(balances []TokenBalance, tokenID types.TokenID) bool {
	for _, b := range balances {
		if b.TokenID == tokenID {
			return true
		}
	}
	return false
}

func Serials(nfts []NFT) []int64 {
	serials := make([]int64, 0, len(nfts))
	for _, nft := range nfts {
		serials = append(serials, nft.SerialNumber)
	}
	return serials
}
