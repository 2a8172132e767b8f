package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"expeditions-service/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LiquidityDeposit is a liquidity provision (mint) valued in USD.
type LiquidityDeposit struct {
	AmountUSD decimal.Decimal `json:"amountUSD"`
}

// StakingDeposit is a stake of LP tokens; its USD value comes from the pool share.
type StakingDeposit struct {
	Amount          decimal.Decimal
	PairTotalSupply decimal.Decimal
	PairReserveUSD  decimal.Decimal
}

// USDValue is (amount / totalSupply) * reserveUSD. An empty pool is worth zero.
func (d StakingDeposit) USDValue() decimal.Decimal {
	if d.PairTotalSupply.IsZero() {
		return decimal.Zero
	}
	return d.Amount.Div(d.PairTotalSupply).Mul(d.PairReserveUSD)
}

// LiquiditySource reports an address's on-chain liquidity activity between two
// unix timestamps, both inclusive.
type LiquiditySource interface {
	DepositsBetween(ctx context.Context, address string, minUSD decimal.Decimal, start, end int64) ([]LiquidityDeposit, error)
	StakingDepositsBetween(ctx context.Context, address string, start, end int64) ([]StakingDeposit, error)
}

func SumDepositsUSD(deposits []LiquidityDeposit) decimal.Decimal {
	total := decimal.Zero
	for _, d := range deposits {
		total = total.Add(d.AmountUSD)
	}
	return total
}

func SumStakingUSD(deposits []StakingDeposit) decimal.Decimal {
	total := decimal.Zero
	for _, d := range deposits {
		total = total.Add(d.USDValue())
	}
	return total
}

const mintsQuery = `query mints($address: Bytes!, $minAmountUSD: BigDecimal!, $timestampA: BigInt!, $timestampB: BigInt!) {
  mints(where: { to: $address, amountUSD_gte: $minAmountUSD, timestamp_gte: $timestampA, timestamp_lte: $timestampB }) {
    amountUSD
    to
    timestamp
  }
}`

const stakingDepositsQuery = `query stakingDeposits($address: Bytes!, $timestampA: BigInt!, $timestampB: BigInt!) {
  liquidityMiningCampaignDeposits(where: { user: $address, timestamp_gte: $timestampA, timestamp_lte: $timestampB }) {
    amount
    timestamp
    liquidityMiningCampaign {
      stakablePair {
        totalSupply
        reserveUSD
      }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type mintsData struct {
	Mints []LiquidityDeposit `json:"mints"`
}

type stakingData struct {
	Deposits []struct {
		Amount   decimal.Decimal `json:"amount"`
		Campaign struct {
			StakablePair struct {
				TotalSupply decimal.Decimal `json:"totalSupply"`
				ReserveUSD  decimal.Decimal `json:"reserveUSD"`
			} `json:"stakablePair"`
		} `json:"liquidityMiningCampaign"`
	} `json:"liquidityMiningCampaignDeposits"`
}

// SubgraphClient queries every configured Swapr subgraph in parallel and
// flattens the results. One failing chain fails the whole call.
type SubgraphClient struct {
	endpoints  []string
	httpClient *http.Client
	log        *zap.Logger
}

func NewSubgraphClient(endpoints []string, timeout time.Duration, log *zap.Logger) *SubgraphClient {
	return &SubgraphClient{
		endpoints:  endpoints,
		httpClient: utils.NewHTTPClient(timeout),
		log:        log,
	}
}

func (c *SubgraphClient) DepositsBetween(ctx context.Context, address string, minUSD decimal.Decimal, start, end int64) ([]LiquidityDeposit, error) {
	vars := map[string]any{
		"address":      strings.ToLower(address),
		"minAmountUSD": minUSD.String(),
		"timestampA":   start,
		"timestampB":   end,
	}

	results := make([][]LiquidityDeposit, len(c.endpoints))
	g, gctx := errgroup.WithContext(ctx)
	for i, endpoint := range c.endpoints {
		i, endpoint := i, endpoint
		g.Go(func() error {
			var data mintsData
			if err := c.query(gctx, endpoint, mintsQuery, vars, &data); err != nil {
				return err
			}
			results[i] = data.Mints
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []LiquidityDeposit
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func (c *SubgraphClient) StakingDepositsBetween(ctx context.Context, address string, start, end int64) ([]StakingDeposit, error) {
	vars := map[string]any{
		"address":    strings.ToLower(address),
		"timestampA": start,
		"timestampB": end,
	}

	results := make([][]StakingDeposit, len(c.endpoints))
	g, gctx := errgroup.WithContext(ctx)
	for i, endpoint := range c.endpoints {
		i, endpoint := i, endpoint
		g.Go(func() error {
			var data stakingData
			if err := c.query(gctx, endpoint, stakingDepositsQuery, vars, &data); err != nil {
				return err
			}
			deposits := make([]StakingDeposit, 0, len(data.Deposits))
			for _, d := range data.Deposits {
				deposits = append(deposits, StakingDeposit{
					Amount:          d.Amount,
					PairTotalSupply: d.Campaign.StakablePair.TotalSupply,
					PairReserveUSD:  d.Campaign.StakablePair.ReserveUSD,
				})
			}
			results[i] = deposits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []StakingDeposit
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func (c *SubgraphClient) query(ctx context.Context, endpoint, query string, vars map[string]any, data any) error {
	var resp struct {
		Data   any            `json:"data"`
		Errors []graphQLError `json:"errors"`
	}
	resp.Data = data

	started := time.Now()
	err := utils.PostJSON(ctx, c.httpClient, endpoint, graphQLRequest{Query: query, Variables: vars}, &resp)
	if err != nil {
		c.log.Warn("subgraph request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return fmt.Errorf("subgraph query: %w", err)
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("subgraph %s: %w", endpoint, errors.New(strings.Join(msgs, "; ")))
	}

	c.log.Debug("subgraph query",
		zap.String("endpoint", endpoint),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}
