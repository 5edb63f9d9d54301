// Package mocks provides testify mocks for the starknet package's
// interfaces.
package mocks

import (
	"context"
	"math/big"

	"github.com/stretchr/testify/mock"

	"github.com/0xdecaff/starknet-go/starknet"
)

// Gateway is a mock implementation of starknet.Gateway.
type Gateway struct {
	mock.Mock
}

var _ starknet.Gateway = (*Gateway)(nil)

func (m *Gateway) CallContract(ctx context.Context, tx *starknet.Transaction, block starknet.BlockIdentifier) ([]string, error) {
	args := m.Called(ctx, tx, block)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *Gateway) GetContractAddresses(ctx context.Context) (*starknet.ContractAddresses, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*starknet.ContractAddresses), args.Error(1)
}

func (m *Gateway) GetBlock(ctx context.Context, block starknet.BlockIdentifier) (*starknet.Block, error) {
	args := m.Called(ctx, block)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*starknet.Block), args.Error(1)
}

func (m *Gateway) GetCode(ctx context.Context, contractAddress *big.Int, block starknet.BlockIdentifier) (*starknet.ContractCode, error) {
	args := m.Called(ctx, contractAddress, block)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*starknet.ContractCode), args.Error(1)
}

func (m *Gateway) GetStorageAt(ctx context.Context, contractAddress, key *big.Int, block starknet.BlockIdentifier) (string, error) {
	args := m.Called(ctx, contractAddress, key, block)
	return args.String(0), args.Error(1)
}

func (m *Gateway) GetTransaction(ctx context.Context, txHash string) (*starknet.TransactionInfo, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*starknet.TransactionInfo), args.Error(1)
}

func (m *Gateway) GetTransactionStatus(ctx context.Context, txHash string) (*starknet.TransactionStatusInfo, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*starknet.TransactionStatusInfo), args.Error(1)
}

func (m *Gateway) GetTransactionReceipt(ctx context.Context, txHash string) (*starknet.TransactionReceipt, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*starknet.TransactionReceipt), args.Error(1)
}

func (m *Gateway) AddTransaction(ctx context.Context, tx *starknet.Transaction, token string) (*starknet.GatewayResponse, error) {
	args := m.Called(ctx, tx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*starknet.GatewayResponse), args.Error(1)
}

func (m *Gateway) Close() {
	m.Called()
}
