package starknet

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testGatewayClient(serverURL string, retryCount int) *gatewayClient {
	g := newGatewayClient(serverURL+"/feeder_gateway", serverURL+"/gateway", retryCount)
	g.retryBackoff = time.Millisecond
	return g
}

func TestGatewayClient_CallContract_WireFormat(t *testing.T) {
	var received invokeFunctionPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feeder_gateway/call_contract", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.Write([]byte(`{"result": ["0x7"]}`))
	}))
	defer server.Close()

	g := testGatewayClient(server.URL, 0)
	result, err := g.CallContract(context.Background(), &Transaction{
		Type:               InvokeFunction,
		ContractAddress:    big.NewInt(0x123),
		EntryPointSelector: big.NewInt(0xabc),
		Calldata:           []*big.Int{big.NewInt(10), big.NewInt(255)},
	}, BlockIdentifier{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"0x7"}, result)

	// Addresses and selectors travel as hex, calldata as decimal strings.
	assert.Equal(t, "INVOKE_FUNCTION", received.Type)
	assert.Equal(t, "0x123", received.ContractAddress)
	assert.Equal(t, "0xabc", received.EntryPointSelector)
	assert.Equal(t, []string{"10", "255"}, received.Calldata)
	assert.Equal(t, []string{}, received.Signature)
}

func TestGatewayClient_AddTransaction_TokenInQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gateway/add_transaction", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		w.Write([]byte(`{"code": "TRANSACTION_RECEIVED", "transaction_hash": "0xdead"}`))
	}))
	defer server.Close()

	g := testGatewayClient(server.URL, 0)
	response, err := g.AddTransaction(context.Background(), &Transaction{
		Type:               InvokeFunction,
		ContractAddress:    big.NewInt(1),
		EntryPointSelector: big.NewInt(2),
	}, "secret")
	assert.NoError(t, err)
	assert.Equal(t, "TRANSACTION_RECEIVED", response.Code)
	assert.Equal(t, "0xdead", response.TransactionHash)
}

func TestGatewayClient_RetriesServerErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			http.Error(w, "sequencer hiccup", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"status": "PENDING", "block_number": 42}`))
	}))
	defer server.Close()

	g := testGatewayClient(server.URL, 2)
	info, err := g.GetTransaction(context.Background(), "0xabc")
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, StatusPending, info.Status)
	assert.Equal(t, uint64(42), *info.BlockNumber)
}

func TestGatewayClient_ExhaustedRetriesPropagate(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	g := testGatewayClient(server.URL, 1)
	_, err := g.GetTransaction(context.Background(), "0xabc")
	assert.Error(t, err)
	assert.Equal(t, 2, attempts)
}

func TestGatewayClient_CancelledBackoffKeepsLastError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sequencer hiccup", http.StatusBadGateway)
	}))
	defer server.Close()

	g := testGatewayClient(server.URL, 5)
	g.retryBackoff = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := g.GetTransaction(ctx, "0xabc")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// The reason the request was being retried survives the cancellation.
	assert.Contains(t, err.Error(), "sequencer hiccup")
}

func TestGatewayClient_ClientErrorsAreTerminal(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "no such transaction", http.StatusBadRequest)
	}))
	defer server.Close()

	g := testGatewayClient(server.URL, 3)
	_, err := g.GetTransaction(context.Background(), "0xabc")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no such transaction")
	// 4xx means the request is wrong; retrying cannot help.
	assert.Equal(t, 1, attempts)
}

func TestGatewayClient_BlockIdentifierQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0xb10c", r.URL.Query().Get("blockHash"))
		w.Write([]byte(`{"block_hash": "0xb10c", "block_number": 7, "status": "ACCEPTED_ONCHAIN"}`))
	}))
	defer server.Close()

	g := testGatewayClient(server.URL, 0)
	block, err := g.GetBlock(context.Background(), BlockIdentifier{BlockHash: "0xb10c"})
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), block.BlockNumber)
	assert.Equal(t, StatusAcceptedOnChain, block.Status)
}

func TestTransactionPayload_UnsupportedType(t *testing.T) {
	_, err := transactionPayload(&Transaction{Type: TransactionType(99)})
	assert.Error(t, err)
}
