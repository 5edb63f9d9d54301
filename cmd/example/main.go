package main

import (
	"context"
	"fmt"
	"math/big"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/0xdecaff/starknet-go/starknet"
)

func setup() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Printf("Warning: error loading .env file: %+v\n", err)
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// Log environment variables for debugging
	log.WithFields(log.Fields{
		"STARKNET_NETWORK":            os.Getenv("STARKNET_NETWORK"),
		"STARKNET_GATEWAY_URL":        os.Getenv("STARKNET_GATEWAY_URL"),
		"STARKNET_FEEDER_GATEWAY_URL": os.Getenv("STARKNET_FEEDER_GATEWAY_URL"),
		"STARKNET_ACCOUNTS":           os.Getenv("STARKNET_ACCOUNTS"),
	}).Info("Environment check")
}

func main() {
	// --- Setup ---
	setup()
	ctx := context.Background()

	// --- Load Configuration ---
	config, err := starknet.NewConfiguration()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// --- Create Client ---
	client, err := starknet.NewClient(config)
	if err != nil {
		log.Fatal("Failed to create client: ", err)
	}
	defer client.Close()

	// --- Bind Account ---
	accounts := config.Accounts()
	if len(accounts) == 0 {
		log.Fatal("No accounts found in configuration")
	}
	accountCfg := accounts[0]

	account, err := starknet.NewAccountClient(accountCfg.Address, accountCfg.KeyPair, client)
	if err != nil {
		log.Fatal("Failed to create account client: ", err)
	}
	log.WithField("address", fmt.Sprintf("0x%x", account.Address)).Info("Account bound")

	// --- Read Current Nonce ---
	nonce, err := account.Nonce(ctx)
	if err != nil {
		log.Fatal("Failed to fetch nonce: ", err)
	}
	log.WithField("nonce", nonce).Info("Current account nonce")

	// --- Submit an Invoke Through the Account Proxy ---
	target := os.Getenv("EXAMPLE_CONTRACT_ADDRESS")
	if target == "" {
		log.Warn("EXAMPLE_CONTRACT_ADDRESS not set, skipping submission")
		return
	}
	contractAddress, ok := new(big.Int).SetString(target, 0)
	if !ok {
		log.Fatal("Invalid EXAMPLE_CONTRACT_ADDRESS")
	}

	log.Info("Submitting increase_balance invoke...")
	response, err := account.AddTransaction(ctx, &starknet.Transaction{
		Type:               starknet.InvokeFunction,
		ContractAddress:    contractAddress,
		EntryPointSelector: starknet.GetSelectorFromName("increase_balance"),
		Calldata:           []*big.Int{big.NewInt(1000)},
	}, "")
	if err != nil {
		log.Fatal("Failed to submit transaction: ", err)
	}
	log.WithFields(log.Fields{
		"hash": response.TransactionHash,
		"code": response.Code,
	}).Info("Transaction submitted")

	// --- Wait for Finality ---
	log.Info("Waiting for the transaction to reach a block...")
	blockNumber, status, err := client.WaitForTransaction(ctx, response.TransactionHash, false, client.PollInterval())
	if err != nil {
		log.Fatal("Transaction failed: ", err)
	}
	log.WithFields(log.Fields{
		"block_number": blockNumber,
		"status":       status.String(),
	}).Info("Transaction confirmed")
}
