// Package collection determines the NFT collection served by the mint
// service, creating it on the ledger when so configured.
package collection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	// Needs extended version with CommitIfNotExists.
	"git.glasklar.is/sigsum/dependencies/safefile"

	"gamevault.dev/mint-go/internal/ledger"
	"gamevault.dev/mint-go/pkg/types"
	"sigsum.org/sigsum-go/pkg/log"
)

// StateFile persists the id of a collection created by this service, as
// a single line "token-id=<id>".
type StateFile struct {
	Name string
}

func parseStateFile(f io.Reader) (types.TokenID, error) {
	scanner := bufio.NewScanner(f)
	// Only read first line.
	if !scanner.Scan() {
		err := scanner.Err()
		if err == nil {
			err = fmt.Errorf("collection state file empty")
		}
		return "", err
	}
	key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
	if !ok || key != "token-id" {
		return "", fmt.Errorf("missing token-id= keyword in collection state file")
	}
	return types.ParseTokenID(value)
}

// Load returns the stored token id. A missing file is reported with an
// error wrapping fs.ErrNotExist.
func (s StateFile) Load() (types.TokenID, error) {
	f, err := os.Open(s.Name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	id, err := parseStateFile(f)
	if err != nil {
		return "", fmt.Errorf("invalid collection state file %q: %v", s.Name, err)
	}
	return id, nil
}

// Create atomically creates the state file. Fails if it already exists.
func (s StateFile) Create(id types.TokenID) error {
	f, err := safefile.Create(s.Name, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "token-id=%s\n", id); err != nil {
		return err
	}
	return f.CommitIfNotExists()
}

type Config struct {
	// Configured id of an existing collection; takes precedence.
	TokenID types.TokenID
	// Optional.
	StatePath       string
	CreateIfMissing bool
	Collection      ledger.CollectionConfig
}

// Resolve returns the id of the collection to mint in, looking at the
// configuration, then the state file, and finally creating a new
// collection if allowed. An empty id with nil error means that there is
// no collection, and minting is unavailable.
func Resolve(ctx context.Context, config Config, cli ledger.Client) (types.TokenID, error) {
	if config.TokenID != "" {
		log.Info("using configured NFT collection %s", config.TokenID)
		return config.TokenID, nil
	}
	var state *StateFile
	if config.StatePath != "" {
		state = &StateFile{Name: config.StatePath}
		id, err := state.Load()
		if err == nil {
			log.Info("using NFT collection %s from %q", id, state.Name)
			return id, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	if !config.CreateIfMissing {
		log.Warning("no NFT collection configured; minting is unavailable until one is created")
		return "", nil
	}
	return Create(ctx, config.Collection, cli, state)
}

// Create creates a new collection on the ledger, and records its id in
// the state file, if any.
func Create(ctx context.Context, config ledger.CollectionConfig, cli ledger.Client, state *StateFile) (types.TokenID, error) {
	if state != nil {
		if _, err := os.Stat(state.Name); err == nil {
			return "", fmt.Errorf("collection state file %q already exists", state.Name)
		}
	}
	id, err := cli.CreateCollection(ctx, config)
	if err != nil {
		return "", fmt.Errorf("creating NFT collection: %w", err)
	}
	log.Info("created NFT collection %s", id)
	if state != nil {
		if err := state.Create(id); err != nil {
			// The collection exists on the ledger regardless; the
			// operator has to record the id by other means.
			return "", fmt.Errorf("collection %s created, but saving to %q failed: %w", id, state.Name, err)
		}
	}
	return id, nil
}
