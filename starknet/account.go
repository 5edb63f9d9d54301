package starknet

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/ethereum/go-ethereum/log"
)

var ErrAlreadySigned = errors.New("pre-signed transactions are not supported")

const (
	getNonceEntryPoint = "get_nonce"
	executeEntryPoint  = "execute"
)

// AccountClient submits invokes through an on-chain account-proxy contract,
// signing each one with the account's key pair. It composes the plain
// Client rather than wrapping its whole surface; read-only queries go
// through Client directly.
type AccountClient struct {
	Address *big.Int

	keyPair KeyPair
	client  *Client

	// mu serializes the nonce-fetch-and-sign critical section. Two
	// concurrent builds on the same account would read the same nonce and
	// produce two signatures that cannot both land on-chain. The lock only
	// covers this client; submissions for the same address from elsewhere
	// still race.
	mu sync.Mutex
}

func NewAccountClient(address *big.Int, keyPair KeyPair, client *Client) (*AccountClient, error) {
	if address == nil || address.Sign() == 0 {
		return nil, fmt.Errorf("account address is not set")
	}
	if client == nil {
		return nil, fmt.Errorf("client is not set")
	}
	if err := validatePrivateKey(keyPair.PrivateKey); err != nil {
		return nil, err
	}

	return &AccountClient{
		Address: new(big.Int).Set(address),
		keyPair: keyPair,
		client:  client,
	}, nil
}

// Client exposes the underlying read/submit client for queries that do not
// involve the account.
func (a *AccountClient) Client() *Client {
	return a.client
}

// Nonce reads the account contract's current nonce through the regular view
// call path. It is fetched fresh immediately before each signing; a stale
// nonce produces a signature the chain rejects.
func (a *AccountClient) Nonce(ctx context.Context) (*big.Int, error) {
	result, err := a.client.Call(ctx, &Transaction{
		Type:               InvokeFunction,
		ContractAddress:    a.Address,
		EntryPointSelector: GetSelectorFromName(getNonceEntryPoint),
		Calldata:           []*big.Int{},
	}, BlockIdentifier{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nonce for account 0x%x: %w", a.Address, err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("empty get_nonce result for account 0x%x", a.Address)
	}
	return result[0], nil
}

// AddTransaction routes a transaction through the account proxy. Deploys
// pass through unmodified; invokes are signed over a freshly fetched nonce
// and re-encoded as a call to the proxy's execute entry point. Invokes that
// already carry a signature are rejected before any network call, so every
// signature that leaves this client originates here.
func (a *AccountClient) AddTransaction(ctx context.Context, tx *Transaction, token string) (*GatewayResponse, error) {
	if tx.Type == Deploy {
		return a.client.AddTransaction(ctx, tx, token)
	}

	if len(tx.Signature) > 0 {
		return nil, fmt.Errorf("transaction to 0x%x: %w", tx.ContractAddress, ErrAlreadySigned)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	nonce, err := a.Nonce(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("Fetched account nonce", "account", hexFelt(a.Address), "nonce", nonce)

	msgHash := HashMessage(a.Address, tx.ContractAddress, tx.EntryPointSelector, tx.Calldata, nonce)
	r, s, err := Sign(msgHash, a.keyPair.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction to 0x%x: %w", tx.ContractAddress, err)
	}
	log.Info("Signed transaction", "account", hexFelt(a.Address), "to", hexFelt(tx.ContractAddress))

	return a.client.AddTransaction(ctx, &Transaction{
		Type:               InvokeFunction,
		ContractAddress:    a.Address,
		EntryPointSelector: GetSelectorFromName(executeEntryPoint),
		Calldata:           executeCalldata(tx, nonce),
		Signature:          []*big.Int{r, s},
	}, token)
}

// executeCalldata re-encodes an invoke into the account proxy's execute
// format: [to, selector, calldata_len, calldata..., nonce].
func executeCalldata(tx *Transaction, nonce *big.Int) []*big.Int {
	calldata := make([]*big.Int, 0, len(tx.Calldata)+4)
	calldata = append(calldata,
		tx.ContractAddress,
		tx.EntryPointSelector,
		big.NewInt(int64(len(tx.Calldata))),
	)
	calldata = append(calldata, tx.Calldata...)
	return append(calldata, nonce)
}

// AccountOptions tunes CreateAccount. PrivateKey binds the account to an
// existing key; when nil, a fresh one is drawn from Random. Random defaults
// to crypto/rand's Reader.
type AccountOptions struct {
	PrivateKey *big.Int
	Random     io.Reader
	Salt       *big.Int
}

// CreateAccount deploys a new account-proxy contract with the key pair's
// public key as its sole constructor argument and returns a client bound to
// the deployed address, along with the deploy's gateway response so the
// caller can await finality.
func CreateAccount(ctx context.Context, client *Client, compiledContract json.RawMessage, opts AccountOptions) (*AccountClient, *GatewayResponse, error) {
	random := opts.Random
	if random == nil {
		random = rand.Reader
	}

	var keyPair KeyPair
	var err error
	if opts.PrivateKey != nil {
		keyPair, err = KeyPairFromPrivateKey(opts.PrivateKey)
	} else {
		keyPair, err = GenerateKeyPair(random)
	}
	if err != nil {
		return nil, nil, err
	}

	salt := opts.Salt
	if salt == nil {
		if salt, err = randomFelt(random); err != nil {
			return nil, nil, err
		}
	}

	response, err := client.Deploy(ctx, compiledContract, []*big.Int{keyPair.PublicKey}, salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to deploy account contract: %w", err)
	}

	address, err := parseFelt(response.Address)
	if err != nil {
		return nil, nil, fmt.Errorf("gateway returned malformed account address: %w", err)
	}
	log.Info("Account contract deployed",
		"address", response.Address,
		"tx_hash", response.TransactionHash)

	account, err := NewAccountClient(address, keyPair, client)
	if err != nil {
		return nil, nil, err
	}
	return account, response, nil
}

func randomFelt(random io.Reader) (*big.Int, error) {
	value, err := rand.Int(random, fp.Modulus())
	if err != nil {
		return nil, fmt.Errorf("failed to draw salt: %w", err)
	}
	return value, nil
}
