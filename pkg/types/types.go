package types

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	EndpointWalletConnect  = Endpoint("wallet/connect")
	EndpointWalletStatus   = Endpoint("wallet/status/{accountId}")
	EndpointWalletVerify   = Endpoint("wallet/verify")
	EndpointMint           = Endpoint("nft/mint")
	EndpointCollectionInfo = Endpoint("nft/collection/info")
	EndpointEligibility    = Endpoint("nft/eligibility/{accountId}")
	EndpointNFTInfo        = Endpoint("nft/{tokenId}/{serialNumber}")
	EndpointHealth         = Endpoint("health")
	EndpointInfo           = Endpoint("info")
	EndpointJournal        = Endpoint("journal")
	EndpointMetrics        = Endpoint("metrics")

	APIKeyHeader    = "X-API-Key"
	RequestIDHeader = "X-Request-Id"
)

// Endpoint is a named HTTP API endpoint
type Endpoint string

// Path joins a number of components to form a full endpoint path.  For example,
// EndpointMint.Path("example.com", "api") -> example.com/api/nft/mint.
func (e Endpoint) Path(components ...string) string {
	return strings.Join(append(components, string(e)), "/")
}

var entityIDPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// AccountID identifies a ledger account, in shard.realm.num form.
type AccountID string

// TokenID identifies a token type (the NFT collection), in
// shard.realm.num form.
type TokenID string

func ParseAccountID(s string) (AccountID, error) {
	if !entityIDPattern.MatchString(s) {
		return "", fmt.Errorf("invalid account id %q, expected shard.realm.num, e.g. 0.0.12345", s)
	}
	return AccountID(s), nil
}

func ParseTokenID(s string) (TokenID, error) {
	if !entityIDPattern.MatchString(s) {
		return "", fmt.Errorf("invalid token id %q, expected shard.realm.num", s)
	}
	return TokenID(s), nil
}

func (a AccountID) String() string { return string(a) }
func (t TokenID) String() string   { return string(t) }

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
	// Code is the error kind, set on failures only.
	Code string `json:"code,omitempty"`
	// RetryAfter is the number of seconds to wait, set on 429 responses.
	RetryAfter int `json:"retryAfter,omitempty"`
	// Eligible is set by the eligibility endpoint only.
	Eligible *bool `json:"eligible,omitempty"`
	// Verified is set by the wallet verify endpoint only.
	Verified *bool  `json:"verified,omitempty"`
	Path     string `json:"path,omitempty"`
	Stack    string `json:"stack,omitempty"`
}
