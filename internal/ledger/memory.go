package ledger

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"gamevault.dev/mint-go/internal/mirror"
	"gamevault.dev/mint-go/pkg/types"
)

// First entity number handed out by Memory.CreateCollection.
const firstMemoryEntity = 5000

type memoryAccount struct {
	balance int64
	tokens  map[types.TokenID]bool
}

type memoryNFT struct {
	owner    types.AccountID
	metadata []byte
	created  string
	modified string
}

type memoryCollection struct {
	config  CollectionConfig
	created string
	nfts    []memoryNFT // index is serial - 1
}

// Memory is an in-process ledger, for tests and local development. It
// also implements mirror.Client, with an always up-to-date view.
type Memory struct {
	mu          sync.RWMutex
	treasury    types.AccountID
	nextEntity  int64
	nextTx      int64
	accounts    map[types.AccountID]*memoryAccount
	collections map[types.TokenID]*memoryCollection
}

var (
	_ Client        = (*Memory)(nil)
	_ mirror.Client = (*Memory)(nil)
)

func NewMemory(treasury types.AccountID) *Memory {
	m := &Memory{
		treasury:    treasury,
		nextEntity:  firstMemoryEntity,
		accounts:    make(map[types.AccountID]*memoryAccount),
		collections: make(map[types.TokenID]*memoryCollection),
	}
	m.AddAccount(treasury, 0)
	return m
}

func timestamp() string {
	now := time.Now()
	return fmt.Sprintf("%d.%09d", now.Unix(), now.Nanosecond())
}

// AddAccount creates an account, or updates the balance of an existing one.
func (m *Memory) AddAccount(id types.AccountID, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; ok {
		a.balance = balance
		return
	}
	m.accounts[id] = &memoryAccount{balance: balance, tokens: make(map[types.TokenID]bool)}
}

// AddCollection registers an existing collection under a fixed id.
func (m *Memory) AddCollection(id types.TokenID, config CollectionConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[id]; ok {
		return fmt.Errorf("collection %s already exists", id)
	}
	m.addCollection(id, config)
	return nil
}

func (m *Memory) addCollection(id types.TokenID, config CollectionConfig) {
	m.collections[id] = &memoryCollection{config: config, created: timestamp()}
	if a, ok := m.accounts[m.treasury]; ok {
		a.tokens[id] = true
	}
}

func (m *Memory) Associate(id types.AccountID, tokenID types.TokenID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return fmt.Errorf("associate %s: %w", id, mirror.ErrNotFound)
	}
	if _, ok := m.collections[tokenID]; !ok {
		return ErrUnknownCollection
	}
	a.tokens[tokenID] = true
	return nil
}

func (m *Memory) transactionID() string {
	m.nextTx++
	return fmt.Sprintf("%s@%d.%09d", m.treasury, time.Now().Unix(), m.nextTx)
}

func (m *Memory) CreateCollection(_ context.Context, config CollectionConfig) (types.TokenID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := types.TokenID(fmt.Sprintf("0.0.%d", m.nextEntity))
	m.nextEntity++
	m.addCollection(id, config)
	return id, nil
}

func (m *Memory) Mint(_ context.Context, collection types.TokenID, metadata []byte) (MintReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collection]
	if !ok {
		return MintReceipt{}, ErrUnknownCollection
	}
	if c.config.MaxSupply > 0 && int64(len(c.nfts)) >= c.config.MaxSupply {
		return MintReceipt{}, ErrSupplyExhausted
	}
	now := timestamp()
	c.nfts = append(c.nfts, memoryNFT{
		owner:    m.treasury,
		metadata: append([]byte(nil), metadata...),
		created:  now,
		modified: now,
	})
	return MintReceipt{Serial: int64(len(c.nfts)), TransactionID: m.transactionID()}, nil
}

func (m *Memory) Transfer(_ context.Context, collection types.TokenID, serial int64, to types.AccountID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collection]
	if !ok {
		return "", ErrUnknownCollection
	}
	if serial < 1 || serial > int64(len(c.nfts)) {
		return "", ErrUnknownSerial
	}
	nft := &c.nfts[serial-1]
	if nft.owner != m.treasury {
		return "", fmt.Errorf("serial %d is owned by %s, not the treasury", serial, nft.owner)
	}
	a, ok := m.accounts[to]
	if !ok {
		return "", fmt.Errorf("transfer to %s: %w", to, mirror.ErrNotFound)
	}
	if !a.tokens[collection] {
		return "", ErrNotAssociated
	}
	nft.owner = to
	nft.modified = timestamp()
	return m.transactionID(), nil
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) GetAccount(_ context.Context, id types.AccountID) (mirror.AccountInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok {
		return mirror.AccountInfo{}, mirror.ErrNotFound
	}
	return mirror.AccountInfo{
		Account: id,
		Balance: mirror.Balance{Balance: a.balance, Timestamp: timestamp()},
	}, nil
}

func (m *Memory) GetTokenBalances(_ context.Context, id types.AccountID) ([]mirror.TokenBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, mirror.ErrNotFound
	}
	var balances []mirror.TokenBalance
	for tokenID := range a.tokens {
		var count int64
		for _, nft := range m.collections[tokenID].nfts {
			if nft.owner == id {
				count++
			}
		}
		balances = append(balances, mirror.TokenBalance{TokenID: tokenID, Balance: count})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].TokenID < balances[j].TokenID })
	return balances, nil
}

func (m *Memory) GetOwnedNFTs(_ context.Context, id types.AccountID, tokenID types.TokenID) ([]mirror.NFT, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[tokenID]
	if !ok {
		return nil, nil
	}
	var nfts []mirror.NFT
	for i, nft := range c.nfts {
		if nft.owner == id {
			nfts = append(nfts, m.nftInfo(tokenID, int64(i+1), &nft))
		}
	}
	return nfts, nil
}

func (m *Memory) GetTokenInfo(_ context.Context, tokenID types.TokenID) (mirror.TokenInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[tokenID]
	if !ok {
		return mirror.TokenInfo{}, mirror.ErrNotFound
	}
	return mirror.TokenInfo{
		TokenID:           tokenID,
		Name:              c.config.Name,
		Symbol:            c.config.Symbol,
		Type:              "NON_FUNGIBLE_UNIQUE",
		TotalSupply:       strconv.Itoa(len(c.nfts)),
		MaxSupply:         strconv.FormatInt(c.config.MaxSupply, 10),
		SupplyType:        "FINITE",
		TreasuryAccountID: m.treasury,
		CreatedTimestamp:  c.created,
	}, nil
}

func (m *Memory) GetNFT(_ context.Context, tokenID types.TokenID, serial int64) (mirror.NFT, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[tokenID]
	if !ok || serial < 1 || serial > int64(len(c.nfts)) {
		return mirror.NFT{}, mirror.ErrNotFound
	}
	return m.nftInfo(tokenID, serial, &c.nfts[serial-1]), nil
}

func (m *Memory) nftInfo(tokenID types.TokenID, serial int64, nft *memoryNFT) mirror.NFT {
	return mirror.NFT{
		AccountID:         nft.owner,
		TokenID:           tokenID,
		SerialNumber:      serial,
		Metadata:          base64.StdEncoding.EncodeToString(nft.metadata),
		CreatedTimestamp:  nft.created,
		ModifiedTimestamp: nft.modified,
	}
}
