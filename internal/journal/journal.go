// Package journal records mint outcomes, so that an operator can
// reconcile mints whose transfer failed.
package journal

import (
	"context"
	"time"

	"gamevault.dev/mint-go/pkg/types"
)

type Status string

const (
	StatusCompleted Status = "completed"
	// Minted to the treasury, but not transferred to the recipient.
	StatusPartial Status = "partial"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case "", StatusCompleted, StatusPartial:
		return Status(s), true
	}
	return "", false
}

type Entry struct {
	Time         time.Time       `json:"time"`
	AccountID    types.AccountID `json:"accountId"`
	TokenID      types.TokenID   `json:"tokenId"`
	SerialNumber int64           `json:"serialNumber"`
	MintTxID     string          `json:"mintTransactionId"`
	TransferTxID string          `json:"transferTransactionId,omitempty"`
	Status       Status          `json:"status"`
	Error        string          `json:"error,omitempty"`
}

// Journal is an append-only list of entries.
type Journal interface {
	Append(context.Context, Entry) error
	// List returns entries in append order. An empty status matches all
	// entries.
	List(ctx context.Context, status Status) ([]Entry, error)
}

func filter(entries []Entry, status Status) []Entry {
	list := []Entry{}
	for _, e := range entries {
		if status == "" || e.Status == status {
			list = append(list, e)
		}
	}
	return list
}
