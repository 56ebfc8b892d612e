package requests

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gamevault.dev/mint-go/internal/apierror"
	"gamevault.dev/mint-go/internal/mint"
	"gamevault.dev/mint-go/pkg/types"
)

// Same as the default body limit of common Node.js JSON parsers.
const maxBodySize = 100 << 10

type accountRequest struct {
	AccountID string `json:"accountId"`
}

type mintRequest struct {
	AccountID  string         `json:"accountId"`
	AssetName  string         `json:"assetName"`
	Attributes map[string]any `json:"attributes"`
}

// decodeJSON decodes the request body into v. An empty body is treated
// as an empty object.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apierror.Wrap(apierror.Validation, err, "Request body too large")
		}
		return apierror.Wrap(apierror.Validation, err, "Invalid JSON body")
	}
	return nil
}

func parseAccountID(s string) (types.AccountID, error) {
	if s == "" {
		return "", apierror.New(apierror.Validation, "Account ID is required")
	}
	id, err := types.ParseAccountID(s)
	if err != nil {
		return "", apierror.Wrap(apierror.Validation, err,
			"Invalid account ID format. Expected format: 0.0.xxxxx")
	}
	return id, nil
}

// AccountRequestFromHTTP parses a body of the form {"accountId": "0.0.x"}.
func AccountRequestFromHTTP(w http.ResponseWriter, r *http.Request) (types.AccountID, error) {
	var req accountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return "", err
	}
	return parseAccountID(req.AccountID)
}

// MintRequestFromHTTP parses the body of a mint request. The fields are
// validated by the orchestrator.
func MintRequestFromHTTP(w http.ResponseWriter, r *http.Request) (mint.Request, error) {
	var req mintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return mint.Request{}, err
	}
	return mint.Request{
		AccountID:  req.AccountID,
		AssetName:  req.AssetName,
		Attributes: req.Attributes,
	}, nil
}

// AccountIDFromPath returns the {accountId} path variable.
func AccountIDFromPath(r *http.Request) (types.AccountID, error) {
	return parseAccountID(mux.Vars(r)["accountId"])
}

// NFTRequestFromPath returns the {tokenId} and {serialNumber} path
// variables.
func NFTRequestFromPath(r *http.Request) (types.TokenID, int64, error) {
	vars := mux.Vars(r)
	if vars["tokenId"] == "" || vars["serialNumber"] == "" {
		return "", 0, apierror.New(apierror.Validation, "Token ID and serial number are required")
	}
	tokenID, err := types.ParseTokenID(vars["tokenId"])
	if err != nil {
		return "", 0, apierror.Wrap(apierror.Validation, err, "Invalid token ID format. Expected format: 0.0.xxxxx")
	}
	serial, err := strconv.ParseInt(vars["serialNumber"], 10, 64)
	if err != nil || serial < 1 {
		return "", 0, apierror.New(apierror.Validation, "Invalid serial number %q, must be a positive integer", vars["serialNumber"])
	}
	return tokenID, serial, nil
}
