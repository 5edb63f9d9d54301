package starknet

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/log"
)

// Deploy submits a DEPLOY transaction for a compiled contract. Deploys are
// not signed by an account; the sequencer assigns the address and returns
// it in the response.
func (c *Client) Deploy(ctx context.Context, compiledContract json.RawMessage, constructorCalldata []*big.Int, salt *big.Int) (*GatewayResponse, error) {
	if len(compiledContract) == 0 {
		return nil, fmt.Errorf("compiled contract is empty")
	}
	if salt == nil {
		return nil, fmt.Errorf("contract address salt is not set")
	}

	response, err := c.AddTransaction(ctx, &Transaction{
		Type:                Deploy,
		ContractAddressSalt: salt,
		ConstructorCalldata: constructorCalldata,
		ContractDefinition:  compiledContract,
	}, "")
	if err != nil {
		return nil, err
	}
	if response.Address == "" {
		return nil, fmt.Errorf("gateway response for deploy %s is missing the contract address", response.TransactionHash)
	}

	log.Info("Contract deployed", "address", response.Address, "tx_hash", response.TransactionHash)
	return response, nil
}
