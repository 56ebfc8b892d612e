package main

import (
	"context"
	"log"
	"os"
	"time"

	getopt "github.com/pborman/getopt/v2"

	"gamevault.dev/mint-go/internal/collection"
	"gamevault.dev/mint-go/internal/config"
	"gamevault.dev/mint-go/internal/ledger"
)

func ParseFlags(c *config.Config) time.Duration {
	timeout := 2 * time.Minute
	help := false
	getopt.SetParameters("")
	getopt.FlagLong(&c.StatePath, "state-file", 0, "file where the id of the new collection is stored")
	getopt.FlagLong(&c.Collection.Name, "name", 0, "collection name")
	getopt.FlagLong(&c.Symbol, "symbol", 0, "collection symbol")
	getopt.FlagLong(&c.MaxSupply, "max-supply", 0, "maximum number of NFTs in the collection")
	getopt.FlagLong(&c.Network.Name, "network", 0, "ledger network, testnet or mainnet")
	getopt.FlagLong(&timeout, "timeout", 0, "timeout for creating the collection")
	getopt.FlagLong(&help, "help", '?', "display help")
	getopt.Parse()
	if help {
		getopt.PrintUsage(os.Stdout)
		os.Exit(0)
	}
	return timeout
}

func main() {
	log.SetFlags(0)
	var conf *config.Config
	// Read default values from the Config struct
	confFile, err := config.OpenConfigFile()
	if err != nil {
		log.Printf("didn't find configuration file, using defaults: %v", err)
		conf = config.NewConfig()
	} else {
		conf, err = config.LoadConfig(confFile)
		if err != nil {
			log.Fatalf("failed to parse config file: %v", err)
		}
	}
	if err := conf.ApplyEnv(os.LookupEnv); err != nil {
		log.Fatal(err)
	}
	timeout := ParseFlags(conf)

	if conf.TokenID != "" {
		log.Fatalf("collection %s is already configured, refusing to create another", conf.TokenID)
	}
	if conf.StatePath == "" {
		log.Fatalf("no state file configured; the id of the new collection would be lost")
	}
	if conf.MaxSupply <= 0 {
		log.Fatalf("invalid max supply %d", conf.MaxSupply)
	}

	cli, err := ledger.NewHedera(ledger.HederaConfig{
		Network:           conf.Network.Name,
		OperatorID:        conf.OperatorID,
		OperatorKey:       conf.OperatorKey,
		SupplyKey:         conf.SupplyKey,
		MaxTransactionFee: conf.MaxTransactionFee,
		MaxQueryPayment:   conf.MaxQueryPayment,
	})
	if err != nil {
		log.Fatalf("ledger client: %v", err)
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	id, err := collection.Create(ctx, ledger.CollectionConfig{
		Name:      conf.Collection.Name,
		Symbol:    conf.Symbol,
		MaxSupply: conf.MaxSupply,
	}, cli, &collection.StateFile{Name: conf.StatePath})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("created collection %s on %s, recorded in %q", id, conf.Network.Name, conf.StatePath)
}
