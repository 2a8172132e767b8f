package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"expeditions-service/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type graphQLCall struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// subgraph serves a canned GraphQL response and records the requests it saw.
type subgraph struct {
	mu    sync.Mutex
	calls []graphQLCall
}

func (s *subgraph) serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call graphQLCall
		if err := json.NewDecoder(r.Body).Decode(&call); err == nil {
			s.mu.Lock()
			s.calls = append(s.calls, call)
			s.mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSubgraphClient_DepositsAcrossChains(t *testing.T) {
	sg := &subgraph{}
	gnosis := sg.serve(t, http.StatusOK, `{"data":{"mints":[{"amountUSD":"60.5","to":"0xabc","timestamp":"1"}]}}`)
	arbitrum := sg.serve(t, http.StatusOK, `{"data":{"mints":[{"amountUSD":"10"},{"amountUSD":"0.25"}]}}`)

	client := services.NewSubgraphClient([]string{gnosis.URL, arbitrum.URL}, 5*time.Second, zap.NewNop())
	deposits, err := client.DepositsBetween(context.Background(),
		"0x00000000000000000000000000000000000A11CE", decimal.NewFromInt(50), 100, 200)
	require.NoError(t, err)

	require.Len(t, deposits, 3)
	assert.True(t, decimal.RequireFromString("70.75").Equal(services.SumDepositsUSD(deposits)))

	require.Len(t, sg.calls, 2)
	for _, call := range sg.calls {
		assert.True(t, strings.HasPrefix(call.Query, "query mints"))
		assert.Equal(t, alice, call.Variables["address"])
		assert.Equal(t, "50", call.Variables["minAmountUSD"])
		assert.EqualValues(t, 100, call.Variables["timestampA"])
		assert.EqualValues(t, 200, call.Variables["timestampB"])
	}
}

func TestSubgraphClient_StakingDeposits(t *testing.T) {
	sg := &subgraph{}
	srv := sg.serve(t, http.StatusOK, `{"data":{"liquidityMiningCampaignDeposits":[
		{"amount":"5","timestamp":"1","liquidityMiningCampaign":{"stakablePair":{"totalSupply":"100","reserveUSD":"2000"}}},
		{"amount":"1","timestamp":"2","liquidityMiningCampaign":{"stakablePair":{"totalSupply":"0","reserveUSD":"2000"}}}
	]}}`)

	client := services.NewSubgraphClient([]string{srv.URL}, 5*time.Second, zap.NewNop())
	deposits, err := client.StakingDepositsBetween(context.Background(), alice, 100, 200)
	require.NoError(t, err)

	require.Len(t, deposits, 2)
	assert.True(t, decimal.NewFromInt(100).Equal(deposits[0].USDValue()))
	assert.True(t, deposits[1].USDValue().IsZero())
	assert.True(t, decimal.NewFromInt(100).Equal(services.SumStakingUSD(deposits)))
}

func TestSubgraphClient_Failures(t *testing.T) {
	sg := &subgraph{}
	ok := sg.serve(t, http.StatusOK, `{"data":{"mints":[{"amountUSD":"60"}]}}`)

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusBadGateway, `upstream down`},
		{"graphql errors", http.StatusOK, `{"data":null,"errors":[{"message":"indexing_error"}]}`},
		{"garbage", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := sg.serve(t, tt.status, tt.body)
			client := services.NewSubgraphClient([]string{ok.URL, bad.URL}, 5*time.Second, zap.NewNop())

			deposits, err := client.DepositsBetween(context.Background(), alice, decimal.Zero, 0, 1)
			assert.Error(t, err)
			assert.Nil(t, deposits)
		})
	}
}

func TestStakingDeposit_USDValue(t *testing.T) {
	d := services.StakingDeposit{
		Amount:          decimal.RequireFromString("2.5"),
		PairTotalSupply: decimal.NewFromInt(10),
		PairReserveUSD:  decimal.NewFromInt(400),
	}
	assert.True(t, decimal.NewFromInt(100).Equal(d.USDValue()))
}
