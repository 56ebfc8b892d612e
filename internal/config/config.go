package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pborman/getopt/v2"

	"gamevault.dev/mint-go/pkg/types"
)

const (
	EnvironmentLocal       = "local"
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"

	TestnetMirrorURL = "https://testnet.mirrornode.hedera.com"
	MainnetMirrorURL = "https://mainnet-public.mirrornode.hedera.com"
)

// RateLimit configures the per-IP limit on the public endpoints.
type RateLimit struct {
	Window time.Duration `toml:"window"`
	Max    int           `toml:"max-requests"`
}

// Network configures ledger access.
type Network struct {
	Name        string `toml:"name"` // "testnet" or "mainnet"
	OperatorID  string `toml:"operator-id"`
	OperatorKey string `toml:"operator-key"`
	SupplyKey   string `toml:"supply-key"`
	MirrorURL   string `toml:"mirror-url"`
	// In hbar.
	MaxTransactionFee float64 `toml:"max-transaction-fee"`
	MaxQueryPayment   float64 `toml:"max-query-payment"`
}

// Collection configures the NFT collection.
type Collection struct {
	TokenID         string `toml:"token-id"`
	Name            string `toml:"name"`
	Symbol          string `toml:"symbol"`
	MaxSupply       int64  `toml:"max-supply"`
	StatePath       string `toml:"state-file"`
	CreateIfMissing bool   `toml:"create-if-missing"`
}

type Cooldown struct {
	Capacity int `toml:"capacity"`
}

// Journal configures the mint journal. Without a Trillian server, the
// journal is kept in memory.
type Journal struct {
	TrillianRPC string `toml:"trillian-rpc-server"`
	TreeIDFile  string `toml:"tree-id-file"`
}

// Sandbox seeds the ephemeral backend.
type Sandbox struct {
	// Accounts created with a balance of 100 hbar.
	Accounts []string `toml:"accounts"`
	// Accounts associated with the collection.
	Associated []string `toml:"associated"`
}

type Config struct {
	Environment      string        `toml:"environment"`
	Prefix           string        `toml:"url-prefix"`
	ExternalEndpoint string        `toml:"external-endpoint"`
	InternalEndpoint string        `toml:"internal-endpoint"`
	Timeout          time.Duration `toml:"timeout"`
	LogFile          string        `toml:"log-file"`
	LogLevel         string        `toml:"log-level"`
	EphemeralBackend bool          `toml:"ephemeral-backend"`
	APISecret        string        `toml:"api-secret"`
	AllowedOrigins   []string      `toml:"allowed-origins"`
	TrustProxy       bool          `toml:"trust-proxy"`
	RateLimit        `toml:"rate-limit"`
	Network          `toml:"network"`
	Collection       `toml:"collection"`
	Cooldown         `toml:"cooldown"`
	Journal          `toml:"journal"`
	Sandbox          `toml:"sandbox"`
}

func NewConfig() *Config {
	// Initialize default configuration
	return &Config{
		Environment:      EnvironmentDevelopment,
		Prefix:           "api",
		ExternalEndpoint: "localhost:3001",
		InternalEndpoint: "localhost:3002",
		Timeout:          time.Second * 30,
		LogFile:          "",
		LogLevel:         "info",
		EphemeralBackend: false,
		AllowedOrigins:   []string{"http://localhost:3000"},
		RateLimit: RateLimit{
			Window: 15 * time.Minute,
			Max:    100,
		},
		Network: Network{
			Name:              "testnet",
			MaxTransactionFee: 100,
			MaxQueryPayment:   50,
		},
		Collection: Collection{
			Name:      "GameExclusiveAsset",
			Symbol:    "GAME",
			MaxSupply: 10000,
			StatePath: "/var/lib/mint-server/collection",
		},
	}
}

func LoadConfig(f io.Reader) (*Config, error) {
	conf := NewConfig()
	if _, err := toml.NewDecoder(f).Decode(&conf); err != nil {
		return nil, err
	}
	return conf, nil
}

func OpenConfigFile() (io.Reader, error) {
	if conf, ok := os.LookupEnv("MINT_SERVER_CONFIG"); ok {
		return os.Open(conf)
	}
	return os.Open("/etc/mint-server/config.toml")
}

// ApplyEnv overrides settings from environment variables, looked up with
// lookup (usually os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	// ENVIRONMENT takes precedence over NODE_ENV.
	str("NODE_ENV", &c.Environment)
	str("ENVIRONMENT", &c.Environment)
	str("HEDERA_NETWORK", &c.Network.Name)
	str("TREASURY_ACCOUNT_ID", &c.OperatorID)
	str("TREASURY_PRIVATE_KEY", &c.OperatorKey)
	str("SUPPLY_PRIVATE_KEY", &c.SupplyKey)
	str("MIRROR_NODE_URL", &c.MirrorURL)
	str("NFT_TOKEN_ID", &c.TokenID)
	str("NFT_TOKEN_NAME", &c.Collection.Name)
	str("NFT_TOKEN_SYMBOL", &c.Symbol)
	str("API_SECRET", &c.APISecret)

	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		// An empty list would allow every origin; keep the default.
		if origins := splitList(v); len(origins) > 0 {
			c.AllowedOrigins = origins
		}
	}
	if v, ok := lookup("NFT_MAX_SUPPLY"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid NFT_MAX_SUPPLY %q: %w", v, err)
		}
		c.MaxSupply = n
	}
	if v, ok := lookup("API_RATE_LIMIT_WINDOW_MS"); ok {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid API_RATE_LIMIT_WINDOW_MS %q: %w", v, err)
		}
		c.Window = time.Duration(ms) * time.Millisecond
	}
	if v, ok := lookup("API_RATE_LIMIT_MAX_REQUESTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid API_RATE_LIMIT_MAX_REQUESTS %q: %w", v, err)
		}
		c.Max = n
	}
	return nil
}

func splitList(s string) []string {
	var list []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// ServerFlags registers command line flags that override the config file.
func (c *Config) ServerFlags(set *getopt.Set) {
	set.FlagLong(&c.ExternalEndpoint, "external-endpoint", 0, "host:port specification of where mint-server serves clients")
	set.FlagLong(&c.InternalEndpoint, "internal-endpoint", 0, "host:port specification of the journal and metrics endpoints")
	set.FlagLong(&c.Prefix, "url-prefix", 0, "a prefix that precedes /<endpoint>")
	set.FlagLong(&c.Timeout, "timeout", 0, "timeout for handling a request")
	set.FlagLong(&c.EphemeralBackend, "ephemeral-test-backend", 0, "if set, enables in-memory ledger, with NO connection to the network")
	set.FlagLong(&c.Network.Name, "network", 0, "ledger network, testnet or mainnet")
	set.FlagLong(&c.MirrorURL, "mirror-url", 0, "mirror node base url")
	set.FlagLong(&c.TokenID, "token-id", 0, "id of an existing NFT collection")
	set.FlagLong(&c.StatePath, "collection-state-file", 0, "file holding the id of a created collection")
	set.FlagLong(&c.TrillianRPC, "trillian-rpc-server", 0, "host:port specification of where Trillian serves clients (Default: in-memory journal)")
	set.FlagLong(&c.TreeIDFile, "tree-id-file", 0, "file holding the journal's tree id")
	set.FlagLong(&c.LogFile, "log-file", 0, "file to write logs to (Default: stderr)")
	set.FlagLong(&c.LogLevel, "log-level", 0, "log level (Available options: debug, info, warning, error. Default: info)")
}

// Validate checks the configuration, and fills in the mirror url from the
// network when unset.
func (c *Config) Validate() error {
	switch c.Network.Name {
	case "testnet":
		if c.MirrorURL == "" {
			c.MirrorURL = TestnetMirrorURL
		}
	case "mainnet":
		if c.MirrorURL == "" {
			c.MirrorURL = MainnetMirrorURL
		}
	default:
		return fmt.Errorf("unsupported network %q, must be testnet or mainnet", c.Network.Name)
	}
	if c.APISecret == "" && c.Environment != EnvironmentLocal {
		return fmt.Errorf("an api secret is required in environment %q", c.Environment)
	}
	if !c.EphemeralBackend && (c.OperatorID == "" || c.OperatorKey == "" || c.SupplyKey == "") {
		return fmt.Errorf("operator id, operator key and supply key are required")
	}
	if c.OperatorID != "" {
		if _, err := types.ParseAccountID(c.OperatorID); err != nil {
			return fmt.Errorf("operator id: %v", err)
		}
	}
	if c.TokenID != "" {
		if _, err := types.ParseTokenID(c.TokenID); err != nil {
			return fmt.Errorf("collection token id: %v", err)
		}
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed-origins must list at least one origin")
	}
	if c.MaxSupply <= 0 {
		return fmt.Errorf("invalid collection max supply %d", c.MaxSupply)
	}
	if c.Max <= 0 || c.Window <= 0 {
		return fmt.Errorf("invalid rate limit, %d requests per %v", c.Max, c.Window)
	}
	if c.TrillianRPC != "" && c.TreeIDFile == "" {
		return fmt.Errorf("a tree id file is required with a trillian journal")
	}
	return nil
}

// Production reports whether error responses should omit stack traces.
func (c *Config) Production() bool {
	return c.Environment == EnvironmentProduction
}
