package starknet

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envNetwork          = "STARKNET_NETWORK"
	envGatewayURL       = "STARKNET_GATEWAY_URL"
	envFeederGatewayURL = "STARKNET_FEEDER_GATEWAY_URL"

	// -- accounts and private keys
	envAccountsList         = "STARKNET_ACCOUNTS"
	envAccountPrivateKeyFmt = "STARKNET_ACCOUNT_%s_PRIVATE_KEY"
	envAccountAddressFmt    = "STARKNET_ACCOUNT_%s_ADDRESS"

	// -- transport and polling
	envRetryCount          = "STARKNET_RETRY_COUNT"
	envPollIntervalSeconds = "STARKNET_POLL_INTERVAL_SECONDS"

	DEFAULT_NETWORK               = "goerli"
	DEFAULT_RETRY_COUNT           = 1
	DEFAULT_POLL_INTERVAL_SECONDS = 5
)

// Known sequencer hosts, keyed by network alias.
var networkHosts = map[string]string{
	"mainnet": "https://alpha-mainnet.starknet.io",
	"goerli":  "https://alpha4.starknet.io",
}

// AccountConfig is a pre-existing on-chain account loaded from the
// environment: its proxy contract address plus the signing key pair.
type AccountConfig struct {
	Label   string
	Address *big.Int
	KeyPair KeyPair
}

type config struct {
	network          string
	gatewayURL       string
	feederGatewayURL string
	accounts         []*AccountConfig
}

func NewConfiguration() (*config, error) {
	network := os.Getenv(envNetwork)
	if network == "" {
		network = DEFAULT_NETWORK
	}

	gatewayURL := os.Getenv(envGatewayURL)
	feederGatewayURL := os.Getenv(envFeederGatewayURL)
	if gatewayURL == "" || feederGatewayURL == "" {
		host, ok := networkHosts[network]
		if !ok {
			return nil, fmt.Errorf("unknown network %q and no explicit gateway URLs set", network)
		}
		if gatewayURL == "" {
			gatewayURL = host + "/gateway"
		}
		if feederGatewayURL == "" {
			feederGatewayURL = host + "/feeder_gateway"
		}
	}

	accounts, err := loadAccountsFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	return &config{
		network:          network,
		gatewayURL:       gatewayURL,
		feederGatewayURL: feederGatewayURL,
		accounts:         accounts,
	}, nil
}

func (c *config) Network() string {
	return c.network
}

func (c *config) GatewayURL() string {
	return c.gatewayURL
}

func (c *config) FeederGatewayURL() string {
	return c.feederGatewayURL
}

// Accounts returns the accounts loaded from the environment. Read-only
// usage needs none, so the slice may be empty.
func (c *config) Accounts() []*AccountConfig {
	return c.accounts
}

// RetryCount returns how many times a failed gateway request is retried
// before the error propagates (default: 1).
func (c *config) RetryCount() int {
	countStr := os.Getenv(envRetryCount)
	if countStr == "" {
		return DEFAULT_RETRY_COUNT
	}
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 0 {
		return DEFAULT_RETRY_COUNT
	}
	return count
}

// PollInterval returns the default interval between finality polls
// (default: 5s).
func (c *config) PollInterval() time.Duration {
	intervalStr := os.Getenv(envPollIntervalSeconds)
	if intervalStr == "" {
		return DEFAULT_POLL_INTERVAL_SECONDS * time.Second
	}
	interval, err := strconv.Atoi(intervalStr)
	if err != nil || interval <= 0 {
		return DEFAULT_POLL_INTERVAL_SECONDS * time.Second
	}
	return time.Duration(interval) * time.Second
}

func loadAccountsFromEnv() ([]*AccountConfig, error) {
	accountLabels := os.Getenv(envAccountsList)
	if accountLabels == "" {
		return nil, nil
	}

	var accounts []*AccountConfig
	for _, label := range strings.Split(accountLabels, ",") {
		label = strings.TrimSpace(label)

		keyEnv := fmt.Sprintf(envAccountPrivateKeyFmt, strings.ToUpper(label))
		privHex := os.Getenv(keyEnv)
		if privHex == "" {
			return nil, fmt.Errorf("no private key found for account[%s] in environment variables", label)
		}
		priv, ok := new(big.Int).SetString(strings.TrimPrefix(privHex, "0x"), 16)
		if !ok {
			return nil, fmt.Errorf("invalid private key for %s", label)
		}
		keyPair, err := KeyPairFromPrivateKey(priv)
		if err != nil {
			return nil, fmt.Errorf("invalid private key for %s: %w", label, err)
		}

		addressEnv := fmt.Sprintf(envAccountAddressFmt, strings.ToUpper(label))
		addressHex := os.Getenv(addressEnv)
		if addressHex == "" {
			return nil, fmt.Errorf("no address found for account[%s] in environment variables", label)
		}
		address, ok := new(big.Int).SetString(strings.TrimPrefix(addressHex, "0x"), 16)
		if !ok {
			return nil, fmt.Errorf("invalid address for %s", label)
		}

		accounts = append(accounts, &AccountConfig{
			Label:   label,
			Address: address,
			KeyPair: keyPair,
		})
	}
	return accounts, nil
}
