package starknet

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// TransactionType distinguishes the two gateway transaction kinds. The
// dispatch on it is exhaustive; adding a member means revisiting every
// switch over it.
type TransactionType int

const (
	InvokeFunction TransactionType = iota
	Deploy
)

func (t TransactionType) String() string {
	switch t {
	case InvokeFunction:
		return "INVOKE_FUNCTION"
	case Deploy:
		return "DEPLOY"
	default:
		return fmt.Sprintf("TransactionType(%d)", int(t))
	}
}

// Transaction is a not-yet-submitted gateway transaction. For invokes the
// Signature field stays empty until the signing pipeline fills it; deploys
// use the constructor fields instead and are never signed by an account.
type Transaction struct {
	Type TransactionType

	// Invoke fields
	ContractAddress    *big.Int
	EntryPointSelector *big.Int
	Calldata           []*big.Int
	Signature          []*big.Int

	// Deploy fields
	ContractAddressSalt *big.Int
	ConstructorCalldata []*big.Int
	ContractDefinition  json.RawMessage
}

// TransactionStatus is the sequencer's view of a transaction's finality.
type TransactionStatus int

const (
	StatusUnknown TransactionStatus = iota
	StatusNotReceived
	StatusReceived
	StatusPending
	StatusAcceptedOnChain
	StatusRejected
)

var statusNames = map[TransactionStatus]string{
	StatusNotReceived:     "NOT_RECEIVED",
	StatusReceived:        "RECEIVED",
	StatusPending:         "PENDING",
	StatusAcceptedOnChain: "ACCEPTED_ONCHAIN",
	StatusRejected:        "REJECTED",
}

func (s TransactionStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseTransactionStatus maps a gateway status string to its enum value.
// Unrecognized strings map to StatusUnknown so callers can treat them as a
// correctness guard instead of silently looping on them.
func ParseTransactionStatus(value string) TransactionStatus {
	for status, name := range statusNames {
		if name == value {
			return status
		}
	}
	return StatusUnknown
}

func (s TransactionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TransactionStatus) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("transaction status must be a string: %w", err)
	}
	*s = ParseTransactionStatus(value)
	return nil
}

// GatewayResponse is the sequencer's answer to add_transaction. Address is
// only present for deploys.
type GatewayResponse struct {
	Code            string `json:"code"`
	TransactionHash string `json:"transaction_hash"`
	Address         string `json:"address,omitempty"`
}

// TransactionInfo is the get_transaction response. BlockNumber is a pointer
// because its presence matters to the finality poller: a PENDING transaction
// without a block number is not yet returnable.
type TransactionInfo struct {
	Status           TransactionStatus `json:"status"`
	BlockHash        string            `json:"block_hash,omitempty"`
	BlockNumber      *uint64           `json:"block_number,omitempty"`
	TransactionIndex *uint64           `json:"transaction_index,omitempty"`
	Transaction      json.RawMessage   `json:"transaction,omitempty"`
}

// TransactionStatusInfo is the lighter get_transaction_status response.
type TransactionStatusInfo struct {
	Status    TransactionStatus `json:"tx_status"`
	BlockHash string            `json:"block_hash,omitempty"`
}

// TransactionReceipt is the get_transaction_receipt response.
type TransactionReceipt struct {
	TransactionHash    string            `json:"transaction_hash"`
	Status             TransactionStatus `json:"status"`
	BlockHash          string            `json:"block_hash,omitempty"`
	BlockNumber        *uint64           `json:"block_number,omitempty"`
	TransactionIndex   *uint64           `json:"transaction_index,omitempty"`
	ExecutionResources json.RawMessage   `json:"execution_resources,omitempty"`
	L2ToL1Messages     json.RawMessage   `json:"l2_to_l1_messages,omitempty"`
}

// Block is the get_block response. Transactions are kept raw; callers that
// need them decode per transaction type.
type Block struct {
	BlockHash    string            `json:"block_hash"`
	ParentHash   string            `json:"parent_block_hash"`
	BlockNumber  uint64            `json:"block_number"`
	StateRoot    string            `json:"state_root,omitempty"`
	Status       TransactionStatus `json:"status"`
	Timestamp    uint64            `json:"timestamp"`
	Transactions json.RawMessage   `json:"transactions,omitempty"`
}

// ContractAddresses holds the core contract addresses reported by the
// feeder gateway.
type ContractAddresses struct {
	Starknet             string `json:"Starknet"`
	GpsStatementVerifier string `json:"GpsStatementVerifier"`
}

// ContractCode is the get_code response: bytecode plus the ABI alongside.
type ContractCode struct {
	Bytecode []string        `json:"bytecode"`
	Abi      json.RawMessage `json:"abi,omitempty"`
}

// BlockIdentifier optionally pins a read-only query to a historical block,
// by hash or by number. The zero value means "latest".
type BlockIdentifier struct {
	BlockHash   string
	BlockNumber *uint64
}
