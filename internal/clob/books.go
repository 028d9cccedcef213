package clob

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/model"
)

const DefaultBaseURL = "https://clob.polymarket.com"

// DefaultQuoteTTL is how long a fetched quote stays fresh. The execution
// stage may resolve several instructions against the same token within one
// burst; re-fetching inside the TTL would add latency without information.
const DefaultQuoteTTL = 5 * time.Second

var ErrNoQuote = errors.New("order book has no two-sided quote")

// Books fetches best bid/ask for outcome tokens from the CLOB order-book
// endpoint, with a small TTL cache in front.
type Books struct {
	base   string
	client *http.Client
	ttl    time.Duration

	mu    sync.Mutex
	cache map[string]cachedQuote
	now   func() time.Time
}

type cachedQuote struct {
	quote model.Quote
	at    time.Time
}

// NewBooks creates a books client. Empty baseURL selects production; a
// non-positive ttl selects the default.
func NewBooks(baseURL string, timeout, ttl time.Duration) *Books {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &Books{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
		ttl:    ttl,
		cache:  make(map[string]cachedQuote),
		now:    time.Now,
	}
}

// bookResponse mirrors the CLOB /book payload. Price levels are decimal
// strings; the first level on each side is the best price.
type bookResponse struct {
	Market  string      `json:"market"`
	AssetID string      `json:"asset_id"`
	Bids    []bookLevel `json:"bids"`
	Asks    []bookLevel `json:"asks"`
}

type bookLevel struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// BestQuote returns the best bid/ask for a token. Missing sides surface as
// ErrNoQuote, which the execution filter stage treats as a hard reject.
func (b *Books) BestQuote(ctx context.Context, tokenID string) (model.Quote, error) {
	b.mu.Lock()
	if entry, ok := b.cache[tokenID]; ok && b.now().Sub(entry.at) < b.ttl {
		b.mu.Unlock()
		return entry.quote, nil
	}
	b.mu.Unlock()

	quote, err := b.fetch(ctx, tokenID)
	if err != nil {
		return model.Quote{}, err
	}
	logs.Debugf("book fetched, token: %s, bid: %.3f, ask: %.3f, mid: %.3f", tokenID, quote.Bid, quote.Ask, quote.Mid())

	b.mu.Lock()
	b.cache[tokenID] = cachedQuote{quote: quote, at: b.now()}
	b.mu.Unlock()
	return quote, nil
}

func (b *Books) fetch(ctx context.Context, tokenID string) (model.Quote, error) {
	q := url.Values{}
	q.Set("token_id", tokenID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.base+"/book?"+q.Encode(), nil)
	if err != nil {
		return model.Quote{}, errors.Wrap(err, "build book request")
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return model.Quote{}, errors.Wrap(err, "fetch book")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Quote{}, errors.Errorf("fetch book, unexpected status: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Quote{}, errors.Wrap(err, "read book response")
	}

	var book bookResponse
	if err := sonic.Unmarshal(body, &book); err != nil {
		return model.Quote{}, errors.Wrap(err, "decode book response")
	}
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return model.Quote{}, ErrNoQuote
	}

	bid, err := levelPrice(book.Bids[0])
	if err != nil {
		return model.Quote{}, err
	}
	ask, err := levelPrice(book.Asks[0])
	if err != nil {
		return model.Quote{}, err
	}
	if bid <= 0 || ask <= 0 {
		return model.Quote{}, ErrNoQuote
	}
	return model.Quote{Bid: bid, Ask: ask}, nil
}

func levelPrice(level bookLevel) (float64, error) {
	price, err := strconv.ParseFloat(level.Price.String(), 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse book level price")
	}
	return price, nil
}
