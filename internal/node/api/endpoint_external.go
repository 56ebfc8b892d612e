package api

// This file implements the public HTTP handler callbacks.

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gamevault.dev/mint-go/internal/apierror"
	"gamevault.dev/mint-go/internal/eligibility"
	"gamevault.dev/mint-go/internal/metadata"
	"gamevault.dev/mint-go/internal/mint"
	"gamevault.dev/mint-go/internal/mirror"
	"gamevault.dev/mint-go/internal/node/handler"
	"gamevault.dev/mint-go/internal/requests"
	"gamevault.dev/mint-go/pkg/types"
	"sigsum.org/sigsum-go/pkg/log"
)

type walletData struct {
	AccountID  types.AccountID `json:"accountId"`
	Balance    int64           `json:"balance"`
	Alias      *string         `json:"alias"`
	EVMAddress *string         `json:"evmAddress"`
}

type ownedNFT struct {
	SerialNumber int64 `json:"serialNumber"`
	Metadata     any   `json:"metadata"`
}

type gameToken struct {
	TokenID    *types.TokenID `json:"tokenId"`
	Associated bool           `json:"associated"`
	OwnedNFTs  int            `json:"ownedNFTs"`
	NFTs       []ownedNFT     `json:"nfts"`
}

type walletStatus struct {
	AccountID     types.AccountID `json:"accountId"`
	Balance       int64           `json:"balance"`
	TokenBalances int             `json:"tokenBalances"`
	GameToken     gameToken       `json:"gameToken"`
}

type verifyData struct {
	AccountID types.AccountID `json:"accountId"`
}

type mintData struct {
	mint.Record
	AssetName   string `json:"assetName"`
	ExplorerURL string `json:"explorerUrl"`
}

type nftData struct {
	TokenID           types.TokenID     `json:"tokenId"`
	SerialNumber      int64             `json:"serialNumber"`
	AccountID         types.AccountID   `json:"accountId"`
	Metadata          any               `json:"metadata"`
	MetadataEncoding  metadata.Encoding `json:"metadataEncoding"`
	CreatedTimestamp  string            `json:"createdTimestamp"`
	ModifiedTimestamp string            `json:"modifiedTimestamp"`
	ExplorerURL       string            `json:"explorerUrl"`
}

type collectionData struct {
	TokenID           types.TokenID   `json:"tokenId"`
	Name              string          `json:"name"`
	Symbol            string          `json:"symbol"`
	Type              string          `json:"type"`
	TotalSupply       string          `json:"totalSupply"`
	MaxSupply         string          `json:"maxSupply"`
	TreasuryAccountID types.AccountID `json:"treasuryAccountId"`
	CreatedTimestamp  string          `json:"createdTimestamp"`
	ExplorerURL       string          `json:"explorerUrl"`
}

type eligibilityData struct {
	AccountID      types.AccountID          `json:"accountId"`
	Reason         eligibility.Reason       `json:"reason"`
	Message        string                   `json:"message"`
	Associated     bool                     `json:"associated"`
	AlreadyOwnsNFT bool                     `json:"alreadyOwnsNFT"`
	OwnedNFTCount  int                      `json:"ownedNFTCount"`
	SerialNumbers  []int64                  `json:"serialNumbers"`
	Remediation    *eligibility.Remediation `json:"remediation,omitempty"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// lookupAccount maps mirror failures to API errors.
func (n *Node) lookupAccount(ctx context.Context, id types.AccountID) (mirror.AccountInfo, error) {
	account, err := n.Mirror.GetAccount(ctx, id)
	if errors.Is(err, mirror.ErrNotFound) {
		return account, apierror.Wrap(apierror.NotFound, err, "Account not found on Hedera network")
	}
	if err != nil {
		return account, apierror.Wrap(apierror.DownstreamUnavailable, err, "Failed to look up account")
	}
	return account, nil
}

func (n *Node) connectWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) (int, error) {
	log.Debug("handling wallet connect request")
	id, err := requests.AccountRequestFromHTTP(w, r)
	if err != nil {
		return handler.Fail(err)
	}
	account, err := n.lookupAccount(ctx, id)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.WriteJSON(w, http.StatusOK, types.Envelope{
		Success: true,
		Message: "Wallet connected successfully",
		Data: walletData{
			AccountID:  id,
			Balance:    account.Balance.Balance,
			Alias:      nullable(account.Alias),
			EVMAddress: nullable(account.EVMAddress),
		},
	})
}

func (n *Node) walletStatus(ctx context.Context, w http.ResponseWriter, r *http.Request) (int, error) {
	log.Debug("handling wallet status request")
	id, err := requests.AccountIDFromPath(r)
	if err != nil {
		return handler.Fail(err)
	}
	account, err := n.lookupAccount(ctx, id)
	if err != nil {
		return handler.Fail(err)
	}
	balances, err := n.Mirror.GetTokenBalances(ctx, id)
	if err != nil {
		return handler.Fail(apierror.Wrap(apierror.DownstreamUnavailable, err, "Failed to get wallet status"))
	}
	status := walletStatus{
		AccountID:     id,
		Balance:       account.Balance.Balance,
		TokenBalances: len(balances),
		GameToken:     gameToken{NFTs: []ownedNFT{}},
	}
	if collection := n.collection(); collection != "" {
		status.GameToken.TokenID = &collection
		status.GameToken.Associated = mirror.IsAssociated(balances, collection)
	}
	if status.GameToken.Associated {
		nfts, err := n.Mirror.GetOwnedNFTs(ctx, id, n.collection())
		if err != nil {
			return handler.Fail(apierror.Wrap(apierror.DownstreamUnavailable, err, "Failed to get wallet status"))
		}
		for _, nft := range nfts {
			status.GameToken.NFTs = append(status.GameToken.NFTs, ownedNFT{
				SerialNumber: nft.SerialNumber,
				Metadata:     metadata.Decode(nft.Metadata).Value(),
			})
		}
		status.GameToken.OwnedNFTs = len(nfts)
	}
	return handler.WriteJSON(w, http.StatusOK, types.Envelope{Success: true, Data: status})
}

func (n *Node) verifyWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) (int, error) {
	log.Debug("handling wallet verify request")
	id, err := requests.AccountRequestFromHTTP(w, r)
	if err != nil {
		return handler.Fail(err)
	}
	_, err = n.Mirror.GetAccount(ctx, id)
	if err != nil && !errors.Is(err, mirror.ErrNotFound) {
		return handler.Fail(apierror.Wrap(apierror.DownstreamUnavailable, err, "Failed to verify wallet"))
	}
	verified := err == nil
	return handler.WriteJSON(w, http.StatusOK, types.Envelope{
		Success:  true,
		Verified: &verified,
		Data:     verifyData{AccountID: id},
	})
}

func (n *Node) mint(ctx context.Context, w http.ResponseWriter, r *http.Request) (int, error) {
	log.Debug("handling mint request")
	req, err := requests.MintRequestFromHTTP(w, r)
	if err != nil {
		return handler.Fail(err)
	}
	record, err := n.Minter.Mint(ctx, req)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.WriteJSON(w, http.StatusCreated, types.Envelope{
		Success: true,
		Message: "NFT minted successfully",
		Data: mintData{
			Record:      record,
			AssetName:   record.Metadata.Name,
			ExplorerURL: explorerURL(n.Network, record.TokenID, record.SerialNumber),
		},
	})
}

func (n *Node) nftInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) (int, error) {
	log.Debug("handling nft info request")
	tokenID, serial, err := requests.NFTRequestFromPath(r)
	if err != nil {
		return handler.Fail(err)
	}
	nft, err := n.Mirror.GetNFT(ctx, tokenID, serial)
	if errors.Is(err, mirror.ErrNotFound) {
		return handler.Fail(apierror.Wrap(apierror.NotFound, err, "NFT not found"))
	}
	if err != nil {
		return handler.Fail(apierror.Wrap(apierror.DownstreamUnavailable, err, "Failed to get NFT info"))
	}
	decoded := metadata.Decode(nft.Metadata)
	return handler.WriteJSON(w, http.StatusOK, types.Envelope{
		Success: true,
		Data: nftData{
			TokenID:           nft.TokenID,
			SerialNumber:      nft.SerialNumber,
			AccountID:         nft.AccountID,
			Metadata:          decoded.Value(),
			MetadataEncoding:  decoded.Encoding,
			CreatedTimestamp:  nft.CreatedTimestamp,
			ModifiedTimestamp: nft.ModifiedTimestamp,
			ExplorerURL:       explorerURL(n.Network, tokenID, serial),
		},
	})
}

func (n *Node) collectionInfo(ctx context.Context, w http.ResponseWriter, _ *http.Request) (int, error) {
	log.Debug("handling collection info request")
	collection := n.collection()
	if collection == "" {
		return handler.Fail(apierror.New(apierror.CollectionUninitialized, "NFT collection not initialized"))
	}
	token, err := n.Mirror.GetTokenInfo(ctx, collection)
	if errors.Is(err, mirror.ErrNotFound) {
		// Mirror nodes lag behind a newly created collection.
		return handler.Fail(apierror.Wrap(apierror.NotFound, err, "NFT collection %s not found", collection))
	}
	if err != nil {
		return handler.Fail(apierror.Wrap(apierror.DownstreamUnavailable, err, "Failed to get collection info"))
	}
	return handler.WriteJSON(w, http.StatusOK, types.Envelope{
		Success: true,
		Data: collectionData{
			TokenID:           token.TokenID,
			Name:              token.Name,
			Symbol:            token.Symbol,
			Type:              token.Type,
			TotalSupply:       token.TotalSupply,
			MaxSupply:         token.MaxSupply,
			TreasuryAccountID: token.TreasuryAccountID,
			CreatedTimestamp:  token.CreatedTimestamp,
			ExplorerURL:       explorerURL(n.Network, collection, 0),
		},
	})
}

func eligibilityMessage(reason eligibility.Reason) string {
	switch reason {
	case eligibility.ReasonOK:
		return "Account is eligible to mint exclusive game asset"
	case eligibility.ReasonNotAssociated:
		return "Account must be associated with the NFT collection before minting"
	case eligibility.ReasonAlreadyOwns:
		return "Account already owns an exclusive game asset"
	default:
		return "Account does not meet eligibility requirements"
	}
}

func (n *Node) eligibility(ctx context.Context, w http.ResponseWriter, r *http.Request) (int, error) {
	log.Debug("handling eligibility request")
	id, err := requests.AccountIDFromPath(r)
	if err != nil {
		return handler.Fail(err)
	}
	result, err := n.Eligibility.Evaluate(ctx, id)
	if err != nil {
		return handler.Fail(err)
	}
	eligible := result.Eligible
	if result.Reason == eligibility.ReasonAccountNotFound {
		return handler.WriteJSON(w, http.StatusNotFound, types.Envelope{
			Success:  false,
			Eligible: &eligible,
			Error:    "Account not found on Hedera network",
			Code:     string(apierror.NotFound),
		})
	}
	serials := result.OwnedSerials
	if serials == nil {
		serials = []int64{}
	}
	return handler.WriteJSON(w, http.StatusOK, types.Envelope{
		Success:  true,
		Eligible: &eligible,
		Data: eligibilityData{
			AccountID:      id,
			Reason:         result.Reason,
			Message:        eligibilityMessage(result.Reason),
			Associated:     result.Associated,
			AlreadyOwnsNFT: result.AlreadyOwns(),
			OwnedNFTCount:  len(result.OwnedSerials),
			SerialNumbers:  serials,
			Remediation:    result.Remediation,
		},
	})
}

func (n *Node) root(_ context.Context, w http.ResponseWriter, _ *http.Request) (int, error) {
	return handler.WriteJSON(w, http.StatusOK, types.Envelope{
		Success: true,
		Message: ServiceName,
		Data: map[string]string{
			"version":       Version,
			"documentation": handler.Handler{Endpoint: types.EndpointInfo}.Path(n.Prefix),
		},
	})
}

func (n *Node) health(_ context.Context, w http.ResponseWriter, _ *http.Request) (int, error) {
	return handler.WriteJSON(w, http.StatusOK, types.Envelope{
		Success: true,
		Message: ServiceName + " is running",
		Data:    map[string]string{"timestamp": time.Now().UTC().Format(time.RFC3339)},
	})
}

func (n *Node) info(_ context.Context, w http.ResponseWriter, _ *http.Request) (int, error) {
	tokenID := "Not initialized"
	if c := n.collection(); c != "" {
		tokenID = c.String()
	}
	path := func(method string, e types.Endpoint) string {
		return method + " " + handler.Handler{Endpoint: e}.Path(n.Prefix)
	}
	return handler.WriteJSON(w, http.StatusOK, types.Envelope{
		Success: true,
		Data: map[string]any{
			"api": map[string]any{
				"name":        ServiceName,
				"version":     Version,
				"description": "Backend API for minting exclusive game assets on Hedera",
				"network":     n.Network,
				"nftCollection": map[string]string{
					"tokenId": tokenID,
					"name":    n.CollectionName,
					"symbol":  n.CollectionSymbol,
				},
			},
			"endpoints": map[string]any{
				"wallet": map[string]string{
					"connect": path(http.MethodPost, types.EndpointWalletConnect),
					"status":  path(http.MethodGet, types.EndpointWalletStatus),
					"verify":  path(http.MethodPost, types.EndpointWalletVerify),
				},
				"nft": map[string]string{
					"mint":        path(http.MethodPost, types.EndpointMint),
					"info":        path(http.MethodGet, types.EndpointNFTInfo),
					"collection":  path(http.MethodGet, types.EndpointCollectionInfo),
					"eligibility": path(http.MethodGet, types.EndpointEligibility),
				},
			},
		},
	})
}
