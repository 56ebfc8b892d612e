// Package mint implements the mint workflow: a cooldown gate, the
// eligibility checks, and the two ledger transactions that create the NFT
// in the treasury and hand it over to the recipient.
package mint

import (
	"context"
	"errors"
	"strings"
	"time"

	"gamevault.dev/mint-go/internal/apierror"
	"gamevault.dev/mint-go/internal/cooldown"
	"gamevault.dev/mint-go/internal/eligibility"
	"gamevault.dev/mint-go/internal/journal"
	"gamevault.dev/mint-go/internal/ledger"
	"gamevault.dev/mint-go/internal/metadata"
	"gamevault.dev/mint-go/pkg/types"
	"sigsum.org/sigsum-go/pkg/log"
)

// CooldownWindow is the minimum time between two mints for the same
// account.
const CooldownWindow = 5 * time.Minute

const OutcomeCompleted = "completed"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Observer is notified of the outcome of every mint request: either
// OutcomeCompleted, or the kind of the error.
type Observer interface {
	OnMint(outcome string)
}

type Request struct {
	AccountID  string
	AssetName  string
	Attributes map[string]any
}

// Record describes a completed mint.
type Record struct {
	TokenID      types.TokenID     `json:"tokenId"`
	SerialNumber int64             `json:"serialNumber"`
	Recipient    types.AccountID   `json:"recipient"`
	MintTxID     string            `json:"mintTransactionId"`
	TransferTxID string            `json:"transferTransactionId"`
	Metadata     metadata.Metadata `json:"metadata"`
}

type Config struct {
	Ledger   ledger.Client
	Engine   *eligibility.Engine
	Cooldown *cooldown.Tracker
	// Optional.
	Journal  journal.Journal
	Clock    Clock
	Observer Observer
}

type Orchestrator struct {
	ledger   ledger.Client
	engine   *eligibility.Engine
	cooldown *cooldown.Tracker
	journal  journal.Journal
	clock    Clock
	observer Observer
	locks    accountLocks
}

func NewOrchestrator(config Config) *Orchestrator {
	o := &Orchestrator{
		ledger:   config.Ledger,
		engine:   config.Engine,
		cooldown: config.Cooldown,
		journal:  config.Journal,
		clock:    config.Clock,
		observer: config.Observer,
	}
	if o.clock == nil {
		o.clock = systemClock{}
	}
	return o
}

// Collection returns the id of the NFT collection, or "" if there is none.
func (o *Orchestrator) Collection() types.TokenID {
	return o.engine.Collection
}

func validate(req *Request) (types.AccountID, string, error) {
	if req.AccountID == "" {
		return "", "", apierror.New(apierror.Validation, "Account ID is required")
	}
	id, err := types.ParseAccountID(req.AccountID)
	if err != nil {
		return "", "", apierror.Wrap(apierror.Validation, err,
			"Invalid account ID format. Expected format: 0.0.xxxxx")
	}
	name := strings.TrimSpace(req.AssetName)
	if name == "" {
		return "", "", apierror.New(apierror.Validation, "Asset name is required")
	}
	return id, name, nil
}

// retryAfter returns the number of seconds, rounded up, until id may mint
// again, or 0 if it may mint now.
func (o *Orchestrator) retryAfter(id types.AccountID) int {
	last, ok := o.cooldown.Get(id)
	if !ok {
		return 0
	}
	remaining := CooldownWindow - o.clock.Now().Sub(last)
	if remaining <= 0 {
		return 0
	}
	seconds := int((remaining.Milliseconds() + 999) / 1000)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// Mint runs the complete mint workflow for one request. Requests for the
// same account are serialized; a request that gives up waiting for
// another one fails as rate limited.
func (o *Orchestrator) Mint(ctx context.Context, req Request) (record Record, err error) {
	defer func() {
		if o.observer == nil {
			return
		}
		if err != nil {
			o.observer.OnMint(string(apierror.KindOf(err)))
		} else {
			o.observer.OnMint(OutcomeCompleted)
		}
	}()

	id, name, err := validate(&req)
	if err != nil {
		return Record{}, err
	}

	release, err := o.locks.acquire(ctx, id)
	if err != nil {
		return Record{}, apierror.RateLimit(1, "A mint for this account is already in progress")
	}
	defer release()

	if seconds := o.retryAfter(id); seconds > 0 {
		return Record{}, apierror.RateLimit(seconds,
			"Please wait %d seconds before minting again", seconds)
	}

	result, err := o.engine.Evaluate(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if err := result.Err(); err != nil {
		return Record{}, err
	}

	md := metadata.New(name, req.Attributes)
	blob, err := md.Marshal()
	if err != nil {
		var tooLarge metadata.TooLargeError
		if errors.As(err, &tooLarge) {
			return Record{}, apierror.Wrap(apierror.MetadataTooLarge, err,
				"NFT metadata exceeds the %d byte limit; use a shorter asset name or fewer attributes", metadata.MaxSize)
		}
		return Record{}, apierror.Wrap(apierror.Validation, err, "Invalid attributes")
	}

	// Once submitted, ledger transactions run to completion even if the
	// client goes away.
	ledgerCtx := context.WithoutCancel(ctx)
	collection := o.engine.Collection

	log.Debug("minting %q in %s for %s", name, collection, id)
	receipt, err := o.ledger.Mint(ledgerCtx, collection, blob)
	if err != nil {
		return Record{}, apierror.Wrap(apierror.DownstreamUnavailable, err, "Failed to mint NFT")
	}

	log.Debug("transferring serial %d of %s to %s", receipt.Serial, collection, id)
	transferTxID, err := o.ledger.Transfer(ledgerCtx, collection, receipt.Serial, id)
	if err != nil {
		log.Error("partial mint: serial %d of %s minted in %s, but transfer to %s failed: %v",
			receipt.Serial, collection, receipt.TransactionID, id, err)
		o.record(ledgerCtx, journal.Entry{
			AccountID:    id,
			TokenID:      collection,
			SerialNumber: receipt.Serial,
			MintTxID:     receipt.TransactionID,
			Status:       journal.StatusPartial,
			Error:        err.Error(),
		})
		return Record{}, apierror.Wrap(apierror.PartialMintFailure, err,
			"NFT was minted but could not be transferred to the account; contact support").
			WithData(map[string]any{
				"tokenId":           collection,
				"serialNumber":      receipt.Serial,
				"mintTransactionId": receipt.TransactionID,
			})
	}

	o.cooldown.Set(id, o.clock.Now())
	o.record(ledgerCtx, journal.Entry{
		AccountID:    id,
		TokenID:      collection,
		SerialNumber: receipt.Serial,
		MintTxID:     receipt.TransactionID,
		TransferTxID: transferTxID,
		Status:       journal.StatusCompleted,
	})
	log.Info("minted serial %d of %s for %s", receipt.Serial, collection, id)

	return Record{
		TokenID:      collection,
		SerialNumber: receipt.Serial,
		Recipient:    id,
		MintTxID:     receipt.TransactionID,
		TransferTxID: transferTxID,
		Metadata:     md,
	}, nil
}

func (o *Orchestrator) record(ctx context.Context, e journal.Entry) {
	if o.journal == nil {
		return
	}
	e.Time = o.clock.Now()
	if err := o.journal.Append(ctx, e); err != nil {
		log.Warning("failed to journal %s mint of serial %d for %s: %v", e.Status, e.SerialNumber, e.AccountID, err)
	}
}
