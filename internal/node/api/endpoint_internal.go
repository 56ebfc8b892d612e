package api

// This file implements internal HTTP handler callbacks, for the operator.

import (
	"context"
	"net/http"

	"gamevault.dev/mint-go/internal/apierror"
	"gamevault.dev/mint-go/internal/journal"
	"gamevault.dev/mint-go/internal/node/handler"
	"gamevault.dev/mint-go/pkg/types"
	"sigsum.org/sigsum-go/pkg/log"
)

// listJournal lists journal entries, optionally filtered by the status
// query parameter.
func (n *Node) listJournal(ctx context.Context, w http.ResponseWriter, r *http.Request) (int, error) {
	log.Debug("handling journal request")
	status, ok := journal.ParseStatus(r.URL.Query().Get("status"))
	if !ok {
		return handler.Fail(apierror.New(apierror.Validation, "Invalid status %q, must be completed or partial", r.URL.Query().Get("status")))
	}
	if n.Journal == nil {
		return handler.WriteJSON(w, http.StatusOK, types.Envelope{Success: true, Data: []journal.Entry{}})
	}
	entries, err := n.Journal.List(ctx, status)
	if err != nil {
		return handler.Fail(apierror.Wrap(apierror.DownstreamUnavailable, err, "Failed to read journal"))
	}
	return handler.WriteJSON(w, http.StatusOK, types.Envelope{Success: true, Data: entries})
}
