package api

import (
	"fmt"
	"net/http"

	"gamevault.dev/mint-go/internal/eligibility"
	"gamevault.dev/mint-go/internal/journal"
	"gamevault.dev/mint-go/internal/mint"
	"gamevault.dev/mint-go/internal/mirror"
	"gamevault.dev/mint-go/internal/node/handler"
	"gamevault.dev/mint-go/pkg/types"
)

const (
	ServiceName = "Hedera Game Backend API"
	Version     = "1.0.0"
)

// Config is a collection of service parameters
type Config struct {
	handler.Config
	Prefix  string // The portion between base URL and endpoint (may be "")
	Network string // Ledger network, used for explorer links
	// Collection name and symbol, reported while the collection is not
	// yet created.
	CollectionName   string
	CollectionSymbol string
}

// Node serves the public API and the operator endpoints.
type Node struct {
	Config
	Mirror      mirror.Client
	Eligibility *eligibility.Engine
	Minter      *mint.Orchestrator
	Journal     journal.Journal
}

func (n *Node) collection() types.TokenID {
	return n.Eligibility.Collection
}

// PublicHTTPHandlers returns all external handlers. The collection info
// handler precedes the NFT info handler, since their paths overlap.
func (n *Node) PublicHTTPHandlers() []handler.Handler {
	return []handler.Handler{
		{Config: n.Config.Config, Fun: n.connectWallet, Endpoint: types.EndpointWalletConnect, Method: http.MethodPost},
		{Config: n.Config.Config, Fun: n.walletStatus, Endpoint: types.EndpointWalletStatus, Method: http.MethodGet},
		{Config: n.Config.Config, Fun: n.verifyWallet, Endpoint: types.EndpointWalletVerify, Method: http.MethodPost},
		{Config: n.Config.Config, Fun: n.mint, Endpoint: types.EndpointMint, Method: http.MethodPost},
		{Config: n.Config.Config, Fun: n.collectionInfo, Endpoint: types.EndpointCollectionInfo, Method: http.MethodGet},
		{Config: n.Config.Config, Fun: n.eligibility, Endpoint: types.EndpointEligibility, Method: http.MethodGet},
		{Config: n.Config.Config, Fun: n.nftInfo, Endpoint: types.EndpointNFTInfo, Method: http.MethodGet},
		{Config: n.Config.Config, Fun: n.health, Endpoint: types.EndpointHealth, Method: http.MethodGet},
		{Config: n.Config.Config, Fun: n.info, Endpoint: types.EndpointInfo, Method: http.MethodGet},
	}
}

// InternalHTTPHandlers returns all internal handlers
func (n *Node) InternalHTTPHandlers() []handler.Handler {
	return []handler.Handler{
		{Config: n.Config.Config, Fun: n.listJournal, Endpoint: types.EndpointJournal, Method: http.MethodGet},
	}
}

// explorerURL links to the collection, or to a single NFT if serial is
// positive.
func explorerURL(network string, tokenID types.TokenID, serial int64) string {
	if serial > 0 {
		return fmt.Sprintf("https://hashscan.io/%s/token/%s/%d", network, tokenID, serial)
	}
	return fmt.Sprintf("https://hashscan.io/%s/token/%s", network, tokenID)
}
