package ledger

import (
	"context"
	"fmt"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"gamevault.dev/mint-go/pkg/types"
	"sigsum.org/sigsum-go/pkg/log"
)

type HederaConfig struct {
	Network string // "testnet" or "mainnet"
	// The operator account pays for transactions, and is the treasury
	// of the collection.
	OperatorID  string
	OperatorKey string
	// Supply key of the collection, held separately from the operator key.
	SupplyKey         string
	MaxTransactionFee float64 // In hbar
	MaxQueryPayment   float64 // In hbar
}

// Hedera implements Client using the Hedera SDK. The SDK has no context
// support; ctx is only checked before submitting a transaction.
type Hedera struct {
	client    *hedera.Client
	treasury  hedera.AccountID
	supplyKey hedera.PrivateKey
}

var _ Client = (*Hedera)(nil)

func NewHedera(config HederaConfig) (*Hedera, error) {
	var client *hedera.Client
	switch config.Network {
	case "testnet":
		client = hedera.ClientForTestnet()
	case "mainnet":
		client = hedera.ClientForMainnet()
	default:
		return nil, fmt.Errorf("unsupported network: %q", config.Network)
	}

	operatorID, err := hedera.AccountIDFromString(config.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("invalid operator account id: %w", err)
	}
	operatorKey, err := hedera.PrivateKeyFromString(config.OperatorKey)
	if err != nil {
		return nil, fmt.Errorf("invalid operator key: %w", err)
	}
	supplyKey, err := hedera.PrivateKeyFromString(config.SupplyKey)
	if err != nil {
		return nil, fmt.Errorf("invalid supply key: %w", err)
	}

	client.SetOperator(operatorID, operatorKey)
	if err := client.SetDefaultMaxTransactionFee(hedera.NewHbar(config.MaxTransactionFee)); err != nil {
		return nil, fmt.Errorf("setting max transaction fee: %w", err)
	}
	if err := client.SetDefaultMaxQueryPayment(hedera.NewHbar(config.MaxQueryPayment)); err != nil {
		return nil, fmt.Errorf("setting max query payment: %w", err)
	}
	return &Hedera{client: client, treasury: operatorID, supplyKey: supplyKey}, nil
}

func (h *Hedera) CreateCollection(ctx context.Context, config CollectionConfig) (types.TokenID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	log.Info("creating NFT collection %q (%s), max supply %d", config.Name, config.Symbol, config.MaxSupply)
	tx, err := hedera.NewTokenCreateTransaction().
		SetTokenName(config.Name).
		SetTokenSymbol(config.Symbol).
		SetTokenType(hedera.TokenTypeNonFungibleUnique).
		SetDecimals(0).
		SetInitialSupply(0).
		SetTreasuryAccountID(h.treasury).
		SetSupplyType(hedera.TokenSupplyTypeFinite).
		SetMaxSupply(config.MaxSupply).
		SetSupplyKey(h.supplyKey.PublicKey()).
		FreezeWith(h.client)
	if err != nil {
		return "", fmt.Errorf("freezing token create transaction: %w", err)
	}
	rsp, err := tx.Sign(h.supplyKey).Execute(h.client)
	if err != nil {
		return "", fmt.Errorf("submitting token create transaction: %w", err)
	}
	receipt, err := rsp.GetReceipt(h.client)
	if err != nil {
		return "", fmt.Errorf("token create transaction %s: %w", rsp.TransactionID, err)
	}
	if receipt.TokenID == nil {
		return "", fmt.Errorf("token create transaction %s: receipt has no token id", rsp.TransactionID)
	}
	return types.TokenID(receipt.TokenID.String()), nil
}

func (h *Hedera) Mint(ctx context.Context, collection types.TokenID, metadata []byte) (MintReceipt, error) {
	if err := ctx.Err(); err != nil {
		return MintReceipt{}, err
	}
	tokenID, err := hedera.TokenIDFromString(collection.String())
	if err != nil {
		return MintReceipt{}, fmt.Errorf("%w: %v", ErrUnknownCollection, err)
	}
	tx, err := hedera.NewTokenMintTransaction().
		SetTokenID(tokenID).
		SetMetadata(metadata).
		FreezeWith(h.client)
	if err != nil {
		return MintReceipt{}, fmt.Errorf("freezing token mint transaction: %w", err)
	}
	rsp, err := tx.Sign(h.supplyKey).Execute(h.client)
	if err != nil {
		return MintReceipt{}, fmt.Errorf("submitting token mint transaction: %w", err)
	}
	receipt, err := rsp.GetReceipt(h.client)
	if err != nil {
		return MintReceipt{}, fmt.Errorf("token mint transaction %s: %w", rsp.TransactionID, err)
	}
	if len(receipt.SerialNumbers) == 0 {
		return MintReceipt{}, fmt.Errorf("token mint transaction %s: receipt has no serial number", rsp.TransactionID)
	}
	return MintReceipt{
		Serial:        receipt.SerialNumbers[0],
		TransactionID: rsp.TransactionID.String(),
	}, nil
}

func (h *Hedera) Transfer(ctx context.Context, collection types.TokenID, serial int64, to types.AccountID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tokenID, err := hedera.TokenIDFromString(collection.String())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownCollection, err)
	}
	recipient, err := hedera.AccountIDFromString(to.String())
	if err != nil {
		return "", fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	// The treasury is the operator, so the client signs for the sender.
	tx, err := hedera.NewTransferTransaction().
		AddNftTransfer(hedera.NftID{TokenID: tokenID, SerialNumber: serial}, h.treasury, recipient).
		FreezeWith(h.client)
	if err != nil {
		return "", fmt.Errorf("freezing transfer transaction: %w", err)
	}
	rsp, err := tx.Execute(h.client)
	if err != nil {
		return "", fmt.Errorf("submitting transfer transaction: %w", err)
	}
	if _, err := rsp.GetReceipt(h.client); err != nil {
		return "", fmt.Errorf("transfer transaction %s: %w", rsp.TransactionID, err)
	}
	return rsp.TransactionID.String(), nil
}

func (h *Hedera) Close() error {
	return h.client.Close()
}
