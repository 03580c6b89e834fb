// Package graphql adapts the Mysten graph query endpoint: paginated wallet
// transaction history, paginated balances, and per-object last-trade
// lookups. Paginated queries run through a fetch.Session so sustained
// throttling aborts the whole page loop, not just one request.
package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/borkprotocol/bork-wallet-sdk/internal/core/domain"
	"github.com/borkprotocol/bork-wallet-sdk/pkg/fetch"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	pageSize  = 50
	scanLimit = 100000000
)

// Client queries one graph endpoint.
type Client struct {
	endpoint string
	fetcher  *fetch.Client
	log      *zap.Logger
}

// NewClient creates a graph endpoint client.
func NewClient(endpoint string, fetcher *fetch.Client, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{endpoint: endpoint, fetcher: fetcher, log: log}
}

// Wire shapes of the graph responses.

type envelope struct {
	Data struct {
		TransactionBlocks *txConnection `json:"transactionBlocks"`
		Address           *addressNode  `json:"address"`
	} `json:"data"`
}

type txConnection struct {
	Nodes    []txNode `json:"nodes"`
	PageInfo pageInfo `json:"pageInfo"`
}

type txNode struct {
	Effects struct {
		Status         string          `json:"status"`
		Timestamp      json.RawMessage `json:"timestamp"`
		BalanceChanges struct {
			Nodes []balanceChangeNode `json:"nodes"`
		} `json:"balanceChanges"`
	} `json:"effects"`
}

type balanceChangeNode struct {
	Owner struct {
		Address string `json:"address"`
	} `json:"owner"`
	Amount   decimal.Decimal `json:"amount"`
	CoinType struct {
		Repr string `json:"repr"`
	} `json:"coinType"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type addressNode struct {
	Balances struct {
		Nodes    []balanceNode `json:"nodes"`
		PageInfo pageInfo      `json:"pageInfo"`
	} `json:"balances"`
}

type balanceNode struct {
	CoinType struct {
		Repr string `json:"repr"`
	} `json:"coinType"`
	CoinObjectCount int             `json:"coinObjectCount"`
	TotalBalance    decimal.Decimal `json:"totalBalance"`
}

func activityQuery(addr domain.Address, after string) string {
	cursor := ""
	if after != "" {
		cursor = fmt.Sprintf("\n          after: %q", after)
	}
	return fmt.Sprintf(`
      query {
        transactionBlocks(
          filter: { affectedAddress: %q }
          last: %d%s
          scanLimit: %d
        ) {
          nodes {
            effects {
              status
              timestamp
              balanceChanges {
                nodes {
                  owner {
                    address
                  }
                  amount
                  coinType {
                    repr
                  }
                }
              }
            }
          }
          pageInfo {
            hasNextPage
            endCursor
          }
        }
      }
    `, addr, pageSize, cursor, scanLimit)
}

func balancesQuery(addr domain.Address, after string) string {
	cursor := ""
	if after != "" {
		cursor = fmt.Sprintf(", after: %q", after)
	}
	return fmt.Sprintf(`
      query {
        address(address: %q) {
          balances(first: %d%s) {
            nodes {
              coinType {
                repr
              }
              coinObjectCount
              totalBalance
            }
            pageInfo {
              hasNextPage
              endCursor
            }
          }
        }
      }
    `, addr, pageSize, cursor)
}

func lastTransactionQuery(objectID string) string {
	return fmt.Sprintf(`
      query {
        transactionBlocks(
          last: 1,
          scanLimit: %d,
          filter: {
            affectedObject: %q,
            kind: PROGRAMMABLE_TX
          }
        ) {
          nodes {
            effects {
              balanceChanges {
                nodes {
                  owner {
                    address
                  }
                  amount
                  coinType {
                    repr
                  }
                }
              }
            }
          }
        }
      }
    `, scanLimit, objectID)
}

type doFunc func(ctx context.Context, req fetch.Request) ([]byte, error)

func (c *Client) post(ctx context.Context, do doFunc, query string) (*envelope, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph query: %w", err)
	}

	raw, err := do(ctx, fetch.Request{
		Method: http.MethodPost,
		URL:    c.endpoint,
		Header: http.Header{
			"Content-Type": []string{"application/json"},
			"Accept":       []string{"*/*"},
		},
		Body: body,
	})
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to parse graph response: %w", fetch.ErrUnavailable)
	}
	return &env, nil
}

type activityPager struct {
	client *Client
	sess   *fetch.Session
	addr   domain.Address
	cursor string
}

// Activity starts a paginated transaction-history fetch for the wallet.
func (c *Client) Activity(addr domain.Address) domain.ActivityPager {
	return &activityPager{client: c, sess: c.fetcher.NewSession(), addr: addr}
}

func (p *activityPager) Next(ctx context.Context) (*domain.ActivityPage, error) {
	env, err := p.client.post(ctx, p.sess.Do, activityQuery(p.addr, p.cursor))
	if err != nil {
		return nil, err
	}

	conn := env.Data.TransactionBlocks
	if conn == nil {
		return nil, fmt.Errorf("graph response missing transactionBlocks: %w", fetch.ErrUnavailable)
	}

	page := &domain.ActivityPage{HasNext: conn.PageInfo.HasNextPage}
	for _, node := range conn.Nodes {
		block := domain.TransactionBlock{
			Status:      node.Effects.Status,
			TimestampMs: parseTimestampMs(node.Effects.Timestamp),
		}
		for _, change := range node.Effects.BalanceChanges.Nodes {
			block.BalanceChanges = append(block.BalanceChanges, domain.BalanceChange{
				Owner:   change.Owner.Address,
				Amount:  change.Amount,
				TokenID: change.CoinType.Repr,
			})
		}
		page.Blocks = append(page.Blocks, block)
	}

	p.cursor = conn.PageInfo.EndCursor
	return page, nil
}

type balancePager struct {
	client *Client
	sess   *fetch.Session
	addr   domain.Address
	cursor string
}

// Balances starts a paginated balance fetch for the wallet.
func (c *Client) Balances(addr domain.Address) domain.BalancePager {
	return &balancePager{client: c, sess: c.fetcher.NewSession(), addr: addr}
}

func (p *balancePager) Next(ctx context.Context) (*domain.BalancePage, error) {
	env, err := p.client.post(ctx, p.sess.Do, balancesQuery(p.addr, p.cursor))
	if err != nil {
		return nil, err
	}

	if env.Data.Address == nil {
		return nil, fmt.Errorf("graph response missing address balances: %w", fetch.ErrUnavailable)
	}
	conn := env.Data.Address.Balances

	page := &domain.BalancePage{HasNext: conn.PageInfo.HasNextPage}
	for _, node := range conn.Nodes {
		page.Balances = append(page.Balances, domain.RawBalance{
			TokenID:         node.CoinType.Repr,
			CoinObjectCount: node.CoinObjectCount,
			TotalBalance:    node.TotalBalance,
		})
	}

	p.cursor = conn.PageInfo.EndCursor
	return page, nil
}

// LastTransaction returns the balance changes of the most recent transaction
// block affecting the object. A wallet with no such block yields nil changes
// without an error.
func (c *Client) LastTransaction(ctx context.Context, objectID string) ([]domain.BalanceChange, error) {
	env, err := c.post(ctx, c.fetcher.Do, lastTransactionQuery(objectID))
	if err != nil {
		return nil, err
	}

	conn := env.Data.TransactionBlocks
	if conn == nil || len(conn.Nodes) == 0 {
		c.log.Debug("no transaction blocks found for object", zap.String("objectId", objectID))
		return nil, nil
	}

	var changes []domain.BalanceChange
	for _, change := range conn.Nodes[0].Effects.BalanceChanges.Nodes {
		changes = append(changes, domain.BalanceChange{
			Owner:   change.Owner.Address,
			Amount:  change.Amount,
			TokenID: change.CoinType.Repr,
		})
	}
	return changes, nil
}

// parseTimestampMs normalizes a block timestamp to epoch milliseconds. The
// endpoint serves RFC3339 strings; older payloads carried epoch ms directly.
func parseTimestampMs(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	s := strings.Trim(string(raw), `"`)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixMilli()
	}
	return 0
}
