package starknet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// Gateway is the wire-level surface of the StarkNet sequencer the client
// needs: read-only feeder queries plus transaction submission. It is an
// interface so tests can substitute a mock.
type Gateway interface {
	CallContract(ctx context.Context, tx *Transaction, block BlockIdentifier) ([]string, error)
	GetContractAddresses(ctx context.Context) (*ContractAddresses, error)
	GetBlock(ctx context.Context, block BlockIdentifier) (*Block, error)
	GetCode(ctx context.Context, contractAddress *big.Int, block BlockIdentifier) (*ContractCode, error)
	GetStorageAt(ctx context.Context, contractAddress, key *big.Int, block BlockIdentifier) (string, error)
	GetTransaction(ctx context.Context, txHash string) (*TransactionInfo, error)
	GetTransactionStatus(ctx context.Context, txHash string) (*TransactionStatusInfo, error)
	GetTransactionReceipt(ctx context.Context, txHash string) (*TransactionReceipt, error)
	AddTransaction(ctx context.Context, tx *Transaction, token string) (*GatewayResponse, error)
	Close()
}

// Ensure *gatewayClient implements Gateway
var _ Gateway = (*gatewayClient)(nil)

type gatewayClient struct {
	feederGatewayURL string
	gatewayURL       string
	httpClient       *http.Client
	retryCount       int
	retryBackoff     time.Duration
}

func newGatewayClient(feederGatewayURL, gatewayURL string, retryCount int) *gatewayClient {
	return &gatewayClient{
		feederGatewayURL: feederGatewayURL,
		gatewayURL:       gatewayURL,
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		retryCount:       retryCount,
		retryBackoff:     time.Second,
	}
}

// invokeFunctionPayload is the gateway wire form of an invoke. Addresses and
// selectors travel as hex strings, calldata and signature as decimal strings.
type invokeFunctionPayload struct {
	Type               string   `json:"type"`
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
	Signature          []string `json:"signature"`
}

type deployPayload struct {
	Type                string          `json:"type"`
	ContractAddressSalt string          `json:"contract_address_salt"`
	ConstructorCalldata []string        `json:"constructor_calldata"`
	ContractDefinition  json.RawMessage `json:"contract_definition"`
}

type callContractResponse struct {
	Result []string `json:"result"`
}

func transactionPayload(tx *Transaction) (any, error) {
	switch tx.Type {
	case InvokeFunction:
		if tx.ContractAddress == nil || tx.EntryPointSelector == nil {
			return nil, fmt.Errorf("invoke transaction needs a contract address and an entry point selector")
		}
		return &invokeFunctionPayload{
			Type:               tx.Type.String(),
			ContractAddress:    hexFelt(tx.ContractAddress),
			EntryPointSelector: hexFelt(tx.EntryPointSelector),
			Calldata:           decFelts(tx.Calldata),
			Signature:          decFelts(tx.Signature),
		}, nil
	case Deploy:
		if tx.ContractAddressSalt == nil || len(tx.ContractDefinition) == 0 {
			return nil, fmt.Errorf("deploy transaction needs a salt and a contract definition")
		}
		return &deployPayload{
			Type:                tx.Type.String(),
			ContractAddressSalt: hexFelt(tx.ContractAddressSalt),
			ConstructorCalldata: decFelts(tx.ConstructorCalldata),
			ContractDefinition:  tx.ContractDefinition,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported transaction type %s", tx.Type)
	}
}

func (g *gatewayClient) CallContract(ctx context.Context, tx *Transaction, block BlockIdentifier) ([]string, error) {
	payload, err := transactionPayload(tx)
	if err != nil {
		return nil, err
	}

	var response callContractResponse
	if err := g.post(ctx, g.feederGatewayURL, "call_contract", block.query(), payload, &response); err != nil {
		return nil, err
	}
	return response.Result, nil
}

func (g *gatewayClient) GetContractAddresses(ctx context.Context) (*ContractAddresses, error) {
	var addresses ContractAddresses
	if err := g.get(ctx, g.feederGatewayURL, "get_contract_addresses", nil, &addresses); err != nil {
		return nil, err
	}
	return &addresses, nil
}

func (g *gatewayClient) GetBlock(ctx context.Context, block BlockIdentifier) (*Block, error) {
	var result Block
	if err := g.get(ctx, g.feederGatewayURL, "get_block", block.query(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *gatewayClient) GetCode(ctx context.Context, contractAddress *big.Int, block BlockIdentifier) (*ContractCode, error) {
	params := block.query()
	params.Set("contractAddress", hexFelt(contractAddress))

	var code ContractCode
	if err := g.get(ctx, g.feederGatewayURL, "get_code", params, &code); err != nil {
		return nil, err
	}
	return &code, nil
}

func (g *gatewayClient) GetStorageAt(ctx context.Context, contractAddress, key *big.Int, block BlockIdentifier) (string, error) {
	params := block.query()
	params.Set("contractAddress", hexFelt(contractAddress))
	params.Set("key", key.Text(10))

	var value string
	if err := g.get(ctx, g.feederGatewayURL, "get_storage_at", params, &value); err != nil {
		return "", err
	}
	return value, nil
}

func (g *gatewayClient) GetTransaction(ctx context.Context, txHash string) (*TransactionInfo, error) {
	params := url.Values{}
	params.Set("transactionHash", txHash)

	var info TransactionInfo
	if err := g.get(ctx, g.feederGatewayURL, "get_transaction", params, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (g *gatewayClient) GetTransactionStatus(ctx context.Context, txHash string) (*TransactionStatusInfo, error) {
	params := url.Values{}
	params.Set("transactionHash", txHash)

	var status TransactionStatusInfo
	if err := g.get(ctx, g.feederGatewayURL, "get_transaction_status", params, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (g *gatewayClient) GetTransactionReceipt(ctx context.Context, txHash string) (*TransactionReceipt, error) {
	params := url.Values{}
	params.Set("transactionHash", txHash)

	var receipt TransactionReceipt
	if err := g.get(ctx, g.feederGatewayURL, "get_transaction_receipt", params, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (g *gatewayClient) AddTransaction(ctx context.Context, tx *Transaction, token string) (*GatewayResponse, error) {
	payload, err := transactionPayload(tx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if token != "" {
		params.Set("token", token)
	}

	var response GatewayResponse
	if err := g.post(ctx, g.gatewayURL, "add_transaction", params, payload, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (g *gatewayClient) Close() {
	g.httpClient.CloseIdleConnections()
}

func (g *gatewayClient) get(ctx context.Context, base, endpoint string, params url.Values, out any) error {
	return g.do(ctx, http.MethodGet, base, endpoint, params, nil, out)
}

func (g *gatewayClient) post(ctx context.Context, base, endpoint string, params url.Values, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}
	return g.do(ctx, http.MethodPost, base, endpoint, params, body, out)
}

// do issues the request, retrying transport errors and 5xx responses up to
// the configured budget. 4xx responses are terminal: the sequencer is
// telling us the request itself is wrong.
func (g *gatewayClient) do(ctx context.Context, method, base, endpoint string, params url.Values, body []byte, out any) error {
	target := base + "/" + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= g.retryCount; attempt++ {
		if attempt > 0 {
			log.Warn("Retrying gateway request", "endpoint", endpoint, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w (last attempt: %v)", ctx.Err(), lastErr)
			case <-time.After(g.retryBackoff):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return fmt.Errorf("failed to build %s request: %w", endpoint, err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%s request failed: %w", endpoint, err)
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read %s response: %w", endpoint, err)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, data)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, data)
		}

		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
		}
		return nil
	}
	return lastErr
}

func (b BlockIdentifier) query() url.Values {
	params := url.Values{}
	if b.BlockHash != "" {
		params.Set("blockHash", b.BlockHash)
	}
	if b.BlockNumber != nil {
		params.Set("blockNumber", strconv.FormatUint(*b.BlockNumber, 10))
	}
	return params
}

func hexFelt(x *big.Int) string {
	return "0x" + x.Text(16)
}

func decFelts(xs []*big.Int) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = x.Text(10)
	}
	return out
}

// parseFelt accepts the sequencer's two felt spellings: 0x-prefixed hex and
// plain decimal.
func parseFelt(s string) (*big.Int, error) {
	digits, base := s, 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits, base = s[2:], 16
	}
	value, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid field element %q", s)
	}
	return value, nil
}
