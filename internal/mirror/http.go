package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"gamevault.dev/mint-go/pkg/types"
	"sigsum.org/sigsum-go/pkg/log"
)

const (
	userAgent = "mint-go server"
	pageLimit = 100
	// Upper bound on followed "next" links, per listing.
	maxPages = 100
)

type links struct {
	Next string `json:"next"`
}

type tokensPage struct {
	Tokens []TokenBalance `json:"tokens"`
	Links  links          `json:"links"`
}

type nftsPage struct {
	NFTs  []NFT `json:"nfts"`
	Links links `json:"links"`
}

// HTTPClient talks to the REST API of a Hedera mirror node.
type HTTPClient struct {
	cli     *http.Client
	baseURL *url.URL
}

// NewHTTPClient creates a client for the mirror node at baseURL, e.g.,
// https://testnet.mirrornode.hedera.com. If cli is nil,
// http.DefaultClient is used.
func NewHTTPClient(baseURL string, cli *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid mirror node url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid mirror node url %q: scheme must be http or https", baseURL)
	}
	if cli == nil {
		cli = http.DefaultClient
	}
	return &HTTPClient{cli: cli, baseURL: u}, nil
}

func (c *HTTPClient) GetAccount(ctx context.Context, id types.AccountID) (AccountInfo, error) {
	var info AccountInfo
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(id.String()), &info); err != nil {
		return AccountInfo{}, fmt.Errorf("get account %s: %w", id, err)
	}
	return info, nil
}

func (c *HTTPClient) GetTokenBalances(ctx context.Context, id types.AccountID) ([]TokenBalance, error) {
	ref := fmt.Sprintf("/api/v1/accounts/%s/tokens?limit=%d", url.PathEscape(id.String()), pageLimit)
	var balances []TokenBalance
	for pages := 0; ref != ""; pages++ {
		if pages == maxPages {
			return nil, fmt.Errorf("get token balances %s: more than %d pages", id, maxPages)
		}
		var page tokensPage
		if err := c.get(ctx, ref, &page); err != nil {
			return nil, fmt.Errorf("get token balances %s: %w", id, err)
		}
		balances = append(balances, page.Tokens...)
		ref = page.Links.Next
	}
	return balances, nil
}

func (c *HTTPClient) GetOwnedNFTs(ctx context.Context, id types.AccountID, tokenID types.TokenID) ([]NFT, error) {
	query := url.Values{}
	query.Set("token.id", tokenID.String())
	query.Set("limit", strconv.Itoa(pageLimit))
	ref := fmt.Sprintf("/api/v1/accounts/%s/nfts?%s", url.PathEscape(id.String()), query.Encode())

	var nfts []NFT
	for pages := 0; ref != ""; pages++ {
		if pages == maxPages {
			return nil, fmt.Errorf("get nfts %s: more than %d pages", id, maxPages)
		}
		var page nftsPage
		if err := c.get(ctx, ref, &page); err != nil {
			return nil, fmt.Errorf("get nfts %s: %w", id, err)
		}
		for _, nft := range page.NFTs {
			if !nft.Deleted {
				nfts = append(nfts, nft)
			}
		}
		ref = page.Links.Next
	}
	return nfts, nil
}

func (c *HTTPClient) GetTokenInfo(ctx context.Context, tokenID types.TokenID) (TokenInfo, error) {
	var info TokenInfo
	if err := c.get(ctx, "/api/v1/tokens/"+url.PathEscape(tokenID.String()), &info); err != nil {
		return TokenInfo{}, fmt.Errorf("get token %s: %w", tokenID, err)
	}
	return info, nil
}

func (c *HTTPClient) GetNFT(ctx context.Context, tokenID types.TokenID, serial int64) (NFT, error) {
	var nft NFT
	ref := fmt.Sprintf("/api/v1/tokens/%s/nfts/%d", url.PathEscape(tokenID.String()), serial)
	if err := c.get(ctx, ref, &nft); err != nil {
		return NFT{}, fmt.Errorf("get nft %s/%d: %w", tokenID, serial, err)
	}
	return nft, nil
}

// get fetches ref, resolved relative to the base url, and decodes the
// JSON response into v.
func (c *HTTPClient) get(ctx context.Context, ref string, v any) error {
	r, err := url.Parse(ref)
	if err != nil {
		return fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	u := c.baseURL.ResolveReference(r)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	log.Debug("mirror node request: %s", u)
	rsp, err := c.cli.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()

	switch rsp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		io.Copy(io.Discard, rsp.Body)
		return ErrNotFound
	default:
		msg, _ := io.ReadAll(io.LimitReader(rsp.Body, 512))
		return fmt.Errorf("mirror node status %d: %q", rsp.StatusCode, msg)
	}
	if err := json.NewDecoder(rsp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding mirror node response: %w", err)
	}
	return nil
}
