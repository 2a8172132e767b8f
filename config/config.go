package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Fragments holds the tunable accrual rules shared by every task engine.
type Fragments struct {
	PerWeek                int
	PastWeekAdditional     int
	AddLiquidityMinUSD     decimal.Decimal
	DailyVisitMultiplicand int
	DailySwapsMultiplicand int
	DailySwapsMinUSD       decimal.Decimal
}

// DefaultFragments mirrors the production values.
var DefaultFragments = Fragments{
	PerWeek:                50,
	PastWeekAdditional:     50,
	AddLiquidityMinUSD:     decimal.NewFromInt(50),
	DailyVisitMultiplicand: 10,
	DailySwapsMultiplicand: 20,
	DailySwapsMinUSD:       decimal.NewFromInt(50),
}

type Subgraph struct {
	Endpoints []string
	Timeout   time.Duration
}

// ClaimSigner configures the EIP-712 domain used to sign reward claims.
type ClaimSigner struct {
	PrivateKey        string
	DomainName        string
	DomainVersion     string
	ChainID           int64
	VerifyingContract string
}

type Snapshot struct {
	Enabled         bool
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

type Config struct {
	Port           string
	DatabaseURL    string
	AllowedOrigins []string
	ServiceToken   string
	CampaignAdmins []string
	LogLevel       string

	Fragments   Fragments
	Subgraph    Subgraph
	ClaimSigner ClaimSigner
	Snapshot    Snapshot
}

var defaultSubgraphEndpoints = []string{
	"https://api.thegraph.com/subgraphs/name/dxgraphs/swapr-mainnet-v2",
	"https://api.thegraph.com/subgraphs/name/dxgraphs/swapr-xdai-v2",
	"https://api.thegraph.com/subgraphs/name/dxgraphs/swapr-arbitrum-one-v2",
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	return Config{
		Port:           getenv("PORT", "5200"),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		AllowedOrigins: getenvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		ServiceToken:   getenv("SERVICE_TOKEN", ""),
		CampaignAdmins: lower(getenvList("CAMPAIGN_ADMIN_ADDRESSES", nil)),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Fragments: Fragments{
			PerWeek:                getenvInt("FRAGMENTS_PER_WEEK", DefaultFragments.PerWeek),
			PastWeekAdditional:     getenvInt("PAST_WEEK_ADDITIONAL_FRAGMENT", DefaultFragments.PastWeekAdditional),
			AddLiquidityMinUSD:     getenvDecimal("ADD_LIQUIDITY_MIN_USD_AMOUNT", DefaultFragments.AddLiquidityMinUSD),
			DailyVisitMultiplicand: getenvInt("DAILY_VISIT_MULTIPLAND", DefaultFragments.DailyVisitMultiplicand),
			DailySwapsMultiplicand: getenvInt("DAILY_SWAPS_MULTIPLAND", DefaultFragments.DailySwapsMultiplicand),
			DailySwapsMinUSD:       getenvDecimal("DAILY_SWAPS_MIN_USD_AMOUNT", DefaultFragments.DailySwapsMinUSD),
		},
		Subgraph: Subgraph{
			Endpoints: getenvList("SUBGRAPH_ENDPOINTS", defaultSubgraphEndpoints),
			Timeout:   time.Duration(getenvInt("SUBGRAPH_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		ClaimSigner: ClaimSigner{
			PrivateKey:        getenv("CLAIM_SIGNER_PRIVATE_KEY", ""),
			DomainName:        getenv("DOMAIN_NAME", "Swapr Expeditions"),
			DomainVersion:     getenv("DOMAIN_VERSION", "1"),
			ChainID:           int64(getenvInt("DOMAIN_CHAIN_ID", 100)),
			VerifyingContract: getenv("NFT_CONTRACT_ADDRESS", ""),
		},
		Snapshot: Snapshot{
			Enabled:         getenvBool("SNAPSHOT_ENABLED", false),
			AccountID:       getenv("CLOUDFLARE_ACCOUNT_ID", ""),
			AccessKeyID:     getenv("R2_ACCESS_KEY_ID", ""),
			AccessKeySecret: getenv("R2_ACCESS_KEY_SECRET", ""),
			Bucket:          getenv("R2_BUCKET_NAME", ""),
			CDNBaseURL:      getenv("CDN_BASE_URL", ""),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getenvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return fallback
}

// getenvList splits a comma-separated variable, trimming spaces and dropping empties.
func getenvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func lower(in []string) []string {
	for i := range in {
		in[i] = strings.ToLower(in[i])
	}
	return in
}
