// Package main provides a mint-server binary
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pborman/getopt/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gamevault.dev/mint-go/internal/collection"
	"gamevault.dev/mint-go/internal/config"
	"gamevault.dev/mint-go/internal/cooldown"
	"gamevault.dev/mint-go/internal/eligibility"
	"gamevault.dev/mint-go/internal/journal"
	"gamevault.dev/mint-go/internal/ledger"
	"gamevault.dev/mint-go/internal/metrics"
	"gamevault.dev/mint-go/internal/mint"
	"gamevault.dev/mint-go/internal/mirror"
	"gamevault.dev/mint-go/internal/node/api"
	"gamevault.dev/mint-go/internal/node/handler"
	"gamevault.dev/mint-go/internal/rate-limit"
	"gamevault.dev/mint-go/pkg/types"
	"sigsum.org/sigsum-go/pkg/log"
)

var (
	gitCommit = "unknown"
)

// Balance of sandbox accounts, in tinybar.
const sandboxBalance = 100 * 100_000_000

func ParseFlags(c *config.Config) {
	help := false
	getopt.SetParameters("")
	getopt.FlagLong(&help, "help", '?', "Display help.")
	getopt.Parse()
	if help {
		getopt.PrintUsage(os.Stdout)
		os.Exit(0)
	}
}

func main() {
	var conf *config.Config

	// Read default values from the Config struct
	confFile, err := config.OpenConfigFile()
	if err != nil {
		log.Info("didn't find configuration file, using defaults: %v", err)
		conf = config.NewConfig()
	} else {
		conf, err = config.LoadConfig(confFile)
		if err != nil {
			log.Fatal("failed to parse config file: %v", err)
		}
	}
	if err := conf.ApplyEnv(os.LookupEnv); err != nil {
		log.Fatal("%v", err)
	}

	// Allow flags to override them
	conf.ServerFlags(getopt.CommandLine)
	ParseFlags(conf)

	if len(conf.LogFile) > 0 {
		if err := log.SetLogFile(conf.LogFile); err != nil {
			log.Fatal("open log file failed: %v", err)
		}
	}
	if err := log.SetLevelFromString(conf.LogLevel); err != nil {
		log.Fatal("setup logging: %v", err)
	}
	if err := conf.Validate(); err != nil {
		log.Fatal("invalid configuration: %v", err)
	}
	log.Info("mint-go git-commit %s, environment %s, network %s", gitCommit, conf.Environment, conf.Network.Name)

	// wait for clean-up before exit
	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Debug("configuring mint-server")
	node, cli, err := setupNode(ctx, conf)
	if err != nil {
		log.Fatal("setup: %v", err)
	}
	defer cli.Close()

	limiter := rateLimit.NewLimiter(conf.Window, conf.Max)
	access := api.Access{
		APISecret:      conf.APISecret,
		Limiter:        limiter,
		TrustProxy:     conf.TrustProxy,
		AllowedOrigins: conf.AllowedOrigins,
	}
	if conf.Environment == config.EnvironmentLocal {
		log.Warning("environment %q: api key check disabled", conf.Environment)
		access.APISecret = ""
	}
	server := &http.Server{Addr: conf.ExternalEndpoint, Handler: node.PublicHTTPHandler(access)}
	intserver := &http.Server{Addr: conf.InternalEndpoint, Handler: node.InternalHTTPHandler(promhttp.Handler())}

	log.Debug("starting await routine")
	wg.Add(1)
	go await(ctx, func() {
		defer wg.Done()
		ctxInner, cancelInner := context.WithTimeout(context.Background(), time.Second*60)
		defer cancelInner()
		log.Info("stopping http server, please wait...")
		server.Shutdown(ctxInner)
		log.Info("... done")
		log.Info("stopping internal api server, please wait...")
		intserver.Shutdown(ctxInner)
		log.Info("... done")
		cancel()
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("serving journal and metrics on %v", conf.InternalEndpoint)
		if err := intserver.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("serve(intserver): %v", err)
		}
		log.Debug("internal endpoints server shut down")
		cancel()
	}()

	log.Info("serving clients on %v/%v", conf.ExternalEndpoint, conf.Prefix)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Error("serve(server): %v", err)
	}
	cancel()
}

// setupNode sets up the ledger and mirror clients, resolves the
// collection, and wires the mint workflow.
func setupNode(ctx context.Context, conf *config.Config) (*api.Node, ledger.Client, error) {
	var cli ledger.Client
	var mirrorClient mirror.Client
	var tokenID types.TokenID

	collectionConfig := ledger.CollectionConfig{
		Name:      conf.Collection.Name,
		Symbol:    conf.Symbol,
		MaxSupply: conf.MaxSupply,
	}
	if conf.EphemeralBackend {
		log.Warning("using in-memory ledger, NOT connected to %s", conf.Network.Name)
		mem, id, err := setupSandbox(ctx, conf, collectionConfig)
		if err != nil {
			return nil, nil, err
		}
		cli, mirrorClient, tokenID = mem, mem, id
	} else {
		h, err := ledger.NewHedera(ledger.HederaConfig{
			Network:           conf.Network.Name,
			OperatorID:        conf.OperatorID,
			OperatorKey:       conf.OperatorKey,
			SupplyKey:         conf.SupplyKey,
			MaxTransactionFee: conf.MaxTransactionFee,
			MaxQueryPayment:   conf.MaxQueryPayment,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("ledger client: %v", err)
		}
		cli = h
		if mirrorClient, err = mirror.NewHTTPClient(conf.MirrorURL, &http.Client{Timeout: conf.Timeout}); err != nil {
			cli.Close()
			return nil, nil, err
		}
		if tokenID, err = collection.Resolve(ctx, collection.Config{
			TokenID:         types.TokenID(conf.TokenID),
			StatePath:       conf.StatePath,
			CreateIfMissing: conf.CreateIfMissing,
			Collection:      collectionConfig,
		}, cli); err != nil {
			cli.Close()
			return nil, nil, err
		}
	}

	var j journal.Journal = journal.NewMemory()
	if conf.TrillianRPC != "" {
		t, err := journal.DialTrillian(conf.TrillianRPC, conf.Timeout, conf.TreeIDFile)
		if err != nil {
			cli.Close()
			return nil, nil, fmt.Errorf("journal: %v", err)
		}
		j = t
	} else {
		log.Info("mint journal kept in memory only")
	}

	serverMetrics := metrics.NewServerMetrics("mint-server")
	engine := &eligibility.Engine{Mirror: mirrorClient, Collection: tokenID}
	node := &api.Node{
		Config: api.Config{
			Config: handler.Config{
				Metrics: serverMetrics,
				Timeout: conf.Timeout,
				Debug:   !conf.Production(),
			},
			Prefix:           conf.Prefix,
			Network:          conf.Network.Name,
			CollectionName:   conf.Collection.Name,
			CollectionSymbol: conf.Symbol,
		},
		Mirror:      mirrorClient,
		Eligibility: engine,
		Minter: mint.NewOrchestrator(mint.Config{
			Ledger:   cli,
			Engine:   engine,
			Cooldown: cooldown.NewTracker(conf.Capacity, mint.CooldownWindow),
			Journal:  j,
			Observer: serverMetrics,
		}),
		Journal: j,
	}
	return node, cli, nil
}

// setupSandbox creates an in-memory ledger with the configured accounts
// and collection.
func setupSandbox(ctx context.Context, conf *config.Config, collectionConfig ledger.CollectionConfig) (*ledger.Memory, types.TokenID, error) {
	treasury := types.AccountID("0.0.2")
	if conf.OperatorID != "" {
		id, err := types.ParseAccountID(conf.OperatorID)
		if err != nil {
			return nil, "", fmt.Errorf("sandbox: %v", err)
		}
		treasury = id
	}
	mem := ledger.NewMemory(treasury)
	for _, s := range conf.Sandbox.Accounts {
		id, err := types.ParseAccountID(s)
		if err != nil {
			return nil, "", fmt.Errorf("sandbox: %v", err)
		}
		mem.AddAccount(id, sandboxBalance)
	}

	tokenID := types.TokenID(conf.TokenID)
	if tokenID != "" {
		if err := mem.AddCollection(tokenID, collectionConfig); err != nil {
			return nil, "", err
		}
	} else {
		var err error
		if tokenID, err = mem.CreateCollection(ctx, collectionConfig); err != nil {
			return nil, "", err
		}
	}
	log.Info("sandbox NFT collection %s", tokenID)
	for _, s := range conf.Sandbox.Associated {
		if err := mem.Associate(types.AccountID(s), tokenID); err != nil {
			return nil, "", fmt.Errorf("sandbox: associating %s: %v", s, err)
		}
	}
	return mem, tokenID, nil
}

// await waits for a shutdown signal and then runs a clean-up function
func await(ctx context.Context, done func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigs:
	case <-ctx.Done():
	}
	log.Debug("received shutdown signal")
	done()
}
