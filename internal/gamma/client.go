package gamma

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/market"
	"main/internal/model"
	"main/internal/model/enum"
)

const DefaultBaseURL = "https://gamma-api.polymarket.com"

const discoverPageLimit = "500"

// Client fetches tradable market metadata from the Gamma API.
type Client struct {
	base   string
	client *http.Client
}

// NewClient creates a Gamma client. An empty baseURL selects the production
// endpoint.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// gammaMarket mirrors the Gamma /markets response. Outcomes and token ids
// arrive as JSON-encoded strings inside the JSON document.
type gammaMarket struct {
	ID           string `json:"id"`
	Question     string `json:"question"`
	ConditionID  string `json:"conditionId"`
	QuestionID   string `json:"questionID"`
	Slug         string `json:"slug"`
	EndDate      string `json:"endDate"`
	Outcomes     string `json:"outcomes"`
	ClobTokenIDs string `json:"clobTokenIds"`
	Active       bool   `json:"active"`
	Closed       bool   `json:"closed"`
}

// ActiveMarkets discovers markets for the given assets and groups them by
// asset. Only active, unexpired markets with at least two resolvable outcome
// tokens are returned.
func (c *Client) ActiveMarkets(ctx context.Context, assets []enum.Asset) (market.Snapshot, error) {
	raw, err := c.fetchMarkets(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	snap := market.Snapshot{}
	for _, gm := range raw {
		m, ok := convert(gm, now)
		if !ok {
			continue
		}
		for _, asset := range assets {
			if m.Asset == asset {
				snap[asset] = append(snap[asset], m)
				break
			}
		}
	}
	return snap, nil
}

func (c *Client) fetchMarkets(ctx context.Context) ([]gammaMarket, error) {
	q := url.Values{}
	q.Set("active", "true")
	q.Set("closed", "false")
	q.Set("limit", discoverPageLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/markets?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build markets request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch markets")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch markets, unexpected status: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read markets response")
	}

	var raw []gammaMarket
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, "decode markets response")
	}
	return raw, nil
}

// convert validates one Gamma record and maps it into the cache model.
func convert(gm gammaMarket, now time.Time) (model.Market, bool) {
	if !gm.Active || gm.Closed {
		return model.Market{}, false
	}

	asset, ok := ClassifyAsset(gm.Slug, gm.Question)
	if !ok {
		return model.Market{}, false
	}

	endDate, err := time.Parse(time.RFC3339, gm.EndDate)
	if err != nil || !endDate.After(now) {
		return model.Market{}, false
	}

	tokens, err := decodeStringArray(gm.ClobTokenIDs)
	if err != nil || len(tokens) < 2 {
		logs.Debugf("gamma market skipped, unresolvable tokens, slug: %s", gm.Slug)
		return model.Market{}, false
	}
	outcomes, err := decodeStringArray(gm.Outcomes)
	if err != nil || len(outcomes) < 2 {
		return model.Market{}, false
	}

	return model.Market{
		Asset:       asset,
		Duration:    ClassifyDuration(gm.Slug, gm.Question),
		ConditionID: gm.ConditionID,
		QuestionID:  gm.QuestionID,
		Question:    gm.Question,
		Slug:        gm.Slug,
		TokenIDs:    tokens,
		Outcomes:    outcomes,
		EndDate:     endDate,
	}, true
}

// decodeStringArray handles Gamma's JSON-encoded string arrays.
func decodeStringArray(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []string
	if err := sonic.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClassifyAsset resolves the underlying asset from market metadata. Matching
// is word-based so short symbols do not match inside unrelated words.
func ClassifyAsset(slug, question string) (enum.Asset, bool) {
	text := strings.ToLower(slug + " " + question)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '?' || r == ','
	})
	for _, w := range words {
		switch w {
		case "bitcoin", "btc":
			return enum.AssetBTC, true
		case "ethereum", "eth":
			return enum.AssetETH, true
		case "solana", "sol":
			return enum.AssetSOL, true
		case "xrp", "ripple":
			return enum.AssetXRP, true
		}
	}
	return 0, false
}

// ClassifyDuration buckets a market into a duration class from its metadata.
// Unrecognized lifetimes fall into the daily bucket, which the execution
// stage only uses as a lookup fallback.
func ClassifyDuration(slug, question string) enum.DurationClass {
	text := strings.ToLower(slug + " " + question)
	switch {
	case strings.Contains(text, "15-min") || strings.Contains(text, "15 min") || strings.Contains(text, "-15m"):
		return enum.Duration15Min
	case strings.Contains(text, "hourly") || strings.Contains(text, "am-et") || strings.Contains(text, "pm-et") ||
		strings.Contains(text, " 1h") || strings.Contains(text, "-1h"):
		return enum.Duration60Min
	default:
		return enum.DurationDaily
	}
}
