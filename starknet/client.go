package starknet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

var (
	ErrTransactionRejected    = errors.New("transaction was rejected")
	ErrTransactionNotReceived = errors.New("transaction was not received")
)

// Client is the plain read/submit surface of a StarkNet sequencer: view
// calls and lookups through the feeder gateway, submission through the
// gateway. Account-level signing lives in AccountClient, which composes
// this type.
type Client struct {
	gateway      Gateway
	pollInterval time.Duration
}

func NewClient(cfg *config) (*Client, error) {
	if cfg.FeederGatewayURL() == "" || cfg.GatewayURL() == "" {
		return nil, fmt.Errorf("gateway URLs are not set")
	}

	log.Info("Connecting to StarkNet gateway",
		"network", cfg.Network(),
		"gateway", cfg.GatewayURL(),
		"feeder_gateway", cfg.FeederGatewayURL())

	return &Client{
		gateway:      newGatewayClient(cfg.FeederGatewayURL(), cfg.GatewayURL(), cfg.RetryCount()),
		pollInterval: cfg.PollInterval(),
	}, nil
}

// NewClientWithGateway builds a client over an existing transport. Used by
// tests and by callers that bring their own Gateway implementation.
func NewClientWithGateway(gateway Gateway, pollInterval time.Duration) *Client {
	return &Client{gateway: gateway, pollInterval: pollInterval}
}

// Call executes a read-only contract call and returns its result felts.
// The zero BlockIdentifier runs the call against the latest state.
func (c *Client) Call(ctx context.Context, tx *Transaction, block BlockIdentifier) ([]*big.Int, error) {
	raw, err := c.gateway.CallContract(ctx, tx, block)
	if err != nil {
		return nil, fmt.Errorf("contract call failed: %w", err)
	}

	result := make([]*big.Int, len(raw))
	for i, v := range raw {
		if result[i], err = parseFelt(v); err != nil {
			return nil, fmt.Errorf("malformed contract call result: %w", err)
		}
	}
	return result, nil
}

// GetContractAddresses returns the addresses of the network's core
// contracts.
func (c *Client) GetContractAddresses(ctx context.Context) (*ContractAddresses, error) {
	return c.gateway.GetContractAddresses(ctx)
}

// GetBlock retrieves a block's data by hash or number.
func (c *Client) GetBlock(ctx context.Context, block BlockIdentifier) (*Block, error) {
	return c.gateway.GetBlock(ctx, block)
}

// GetCode returns the bytecode and ABI deployed at an address.
func (c *Client) GetCode(ctx context.Context, contractAddress *big.Int, block BlockIdentifier) (*ContractCode, error) {
	return c.gateway.GetCode(ctx, contractAddress, block)
}

// GetStorageAt reads one storage slot of a contract.
func (c *Client) GetStorageAt(ctx context.Context, contractAddress, key *big.Int, block BlockIdentifier) (*big.Int, error) {
	raw, err := c.gateway.GetStorageAt(ctx, contractAddress, key, block)
	if err != nil {
		return nil, err
	}
	return parseFelt(raw)
}

// GetTransaction looks a transaction up by hash.
func (c *Client) GetTransaction(ctx context.Context, txHash string) (*TransactionInfo, error) {
	return c.gateway.GetTransaction(ctx, txHash)
}

// GetTransactionStatus returns just the status portion of a transaction
// lookup.
func (c *Client) GetTransactionStatus(ctx context.Context, txHash string) (*TransactionStatusInfo, error) {
	return c.gateway.GetTransactionStatus(ctx, txHash)
}

// GetTransactionReceipt returns the receipt for a transaction if it exists.
func (c *Client) GetTransactionReceipt(ctx context.Context, txHash string) (*TransactionReceipt, error) {
	return c.gateway.GetTransactionReceipt(ctx, txHash)
}

// AddTransaction submits a transaction to the gateway. The transaction is
// sent as-is; account-proxied signing is AccountClient's job.
func (c *Client) AddTransaction(ctx context.Context, tx *Transaction, token string) (*GatewayResponse, error) {
	response, err := c.gateway.AddTransaction(ctx, tx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to submit transaction: %w", err)
	}

	log.Info("Transaction submitted", "hash", response.TransactionHash, "code", response.Code)
	return response, nil
}

// WaitForTransaction polls a transaction until it reaches finality and
// returns its block number and final status.
//
// ACCEPTED_ONCHAIN always terminates the wait. PENDING terminates it only
// when waitForAccept is false and the sequencer already reports a block
// number. REJECTED fails immediately. NOT_RECEIVED is tolerated on the very
// first poll, where propagation lag is expected, and is a terminal failure
// afterwards. An unrecognized status fails rather than looping forever on
// it. The wait is cancellable through ctx at every sleep.
func (c *Client) WaitForTransaction(ctx context.Context, txHash string, waitForAccept bool, checkInterval time.Duration) (uint64, TransactionStatus, error) {
	if checkInterval <= 0 {
		return 0, StatusUnknown, fmt.Errorf("check interval must be positive, got %s", checkInterval)
	}

	firstRun := true
	for {
		info, err := c.gateway.GetTransaction(ctx, txHash)
		if err != nil {
			return 0, StatusUnknown, fmt.Errorf("failed to fetch transaction %s: %w", txHash, err)
		}

		log.Debug("Polled transaction", "hash", txHash, "status", info.Status)

		switch info.Status {
		case StatusAcceptedOnChain:
			if info.BlockNumber == nil {
				return 0, info.Status, fmt.Errorf("transaction %s was accepted but the sequencer reported no block number", txHash)
			}
			return *info.BlockNumber, info.Status, nil
		case StatusPending:
			if !waitForAccept && info.BlockNumber != nil {
				return *info.BlockNumber, info.Status, nil
			}
		case StatusRejected:
			return 0, info.Status, fmt.Errorf("transaction %s: %w", txHash, ErrTransactionRejected)
		case StatusNotReceived:
			if !firstRun {
				return 0, info.Status, fmt.Errorf("transaction %s: %w", txHash, ErrTransactionNotReceived)
			}
		case StatusReceived:
			// keep polling
		default:
			return 0, info.Status, fmt.Errorf("transaction %s has unknown status %q", txHash, info.Status)
		}

		firstRun = false
		select {
		case <-ctx.Done():
			return 0, StatusUnknown, ctx.Err()
		case <-time.After(checkInterval):
		}
	}
}

// PollInterval is the configured default interval for finality polling.
func (c *Client) PollInterval() time.Duration {
	return c.pollInterval
}

// Close releases the underlying transport's resources.
func (c *Client) Close() {
	c.gateway.Close()
}
