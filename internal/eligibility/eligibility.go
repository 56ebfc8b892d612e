// Package eligibility decides whether an account may mint the exclusive
// NFT, based on mirror node state.
package eligibility

import (
	"context"
	"errors"
	"fmt"

	"gamevault.dev/mint-go/internal/apierror"
	"gamevault.dev/mint-go/internal/mirror"
	"gamevault.dev/mint-go/pkg/types"
)

type Reason string

const (
	ReasonOK              Reason = "ok"
	ReasonAccountNotFound Reason = "account_not_found"
	ReasonNotAssociated   Reason = "not_associated"
	ReasonAlreadyOwns     Reason = "already_owns"
)

// Remediation tells the client how to make an account eligible.
type Remediation struct {
	TokenID      types.TokenID `json:"tokenId"`
	Instructions string        `json:"instructions"`
}

type Result struct {
	AccountID types.AccountID
	Eligible  bool
	Reason    Reason
	// Set when the existence check passed.
	Associated bool
	// Set when the account is associated.
	OwnedSerials []int64
	// Set for ReasonNotAssociated.
	Remediation *Remediation
}

func (r *Result) AlreadyOwns() bool {
	return len(r.OwnedSerials) > 0
}

// Err converts an ineligible result to the corresponding API error, and
// returns nil for an eligible one.
func (r *Result) Err() error {
	switch r.Reason {
	case ReasonOK:
		return nil
	case ReasonAccountNotFound:
		return apierror.New(apierror.NotFound, "Account not found on Hedera network")
	case ReasonNotAssociated:
		return apierror.New(apierror.NotAssociated, "Account is not associated with the NFT collection").
			WithData(map[string]any{
				"tokenId":             r.Remediation.TokenID,
				"associationRequired": true,
				"instructions":        r.Remediation.Instructions,
			})
	case ReasonAlreadyOwns:
		return apierror.New(apierror.AlreadyOwns, "Account already owns an exclusive game asset").
			WithData(map[string]any{
				"ownedNFTCount": len(r.OwnedSerials),
				"serialNumbers": r.OwnedSerials,
			})
	default:
		return apierror.New(apierror.Internal, "unknown eligibility reason %q", r.Reason)
	}
}

// Engine evaluates eligibility against the mirror node. The collection is
// fixed for the lifetime of the engine; empty means it was never set up.
type Engine struct {
	Mirror     mirror.Client
	Collection types.TokenID
}

func associationInstructions(tokenID types.TokenID) string {
	return fmt.Sprintf("Associate your account with token %s in your wallet before minting", tokenID)
}

// Evaluate checks, in order, that the account exists, that it is
// associated with the collection, and that it owns no NFT of the
// collection. The first failing check decides the result. A returned
// error means the checks could not be completed.
func (e *Engine) Evaluate(ctx context.Context, id types.AccountID) (Result, error) {
	if e.Collection == "" {
		return Result{}, apierror.New(apierror.CollectionUninitialized,
			"NFT collection not initialized. Please contact administrator.")
	}
	result := Result{AccountID: id}

	if _, err := e.Mirror.GetAccount(ctx, id); err != nil {
		if errors.Is(err, mirror.ErrNotFound) {
			result.Reason = ReasonAccountNotFound
			return result, nil
		}
		return Result{}, apierror.Wrap(apierror.DownstreamUnavailable, err, "Failed to look up account")
	}

	balances, err := e.Mirror.GetTokenBalances(ctx, id)
	if err != nil {
		return Result{}, apierror.Wrap(apierror.DownstreamUnavailable, err, "Failed to look up token associations")
	}
	if !mirror.IsAssociated(balances, e.Collection) {
		result.Reason = ReasonNotAssociated
		result.Remediation = &Remediation{
			TokenID:      e.Collection,
			Instructions: associationInstructions(e.Collection),
		}
		return result, nil
	}
	result.Associated = true

	nfts, err := e.Mirror.GetOwnedNFTs(ctx, id, e.Collection)
	if err != nil {
		return Result{}, apierror.Wrap(apierror.DownstreamUnavailable, err, "Failed to look up owned NFTs")
	}
	result.OwnedSerials = mirror.Serials(nfts)
	if result.AlreadyOwns() {
		result.Reason = ReasonAlreadyOwns
		return result, nil
	}

	result.Eligible = true
	result.Reason = ReasonOK
	return result, nil
}
