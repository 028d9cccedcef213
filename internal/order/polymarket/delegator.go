package polymarket

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"math/big"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const DefaultBaseURL = "https://clob.polymarket.com"

// amountScale is the USDC/share fixed-point scale used by the exchange.
const amountScale = 1e6

var (
	ErrMissingCredentials = errors.New("missing clob api credentials")
	ErrOrderRejected      = errors.New("order rejected by exchange")
)

// Creds are the L2 API credentials issued by the CLOB.
type Creds struct {
	APIKey     string
	Secret     string
	Passphrase string
}

// Delegator signs and submits orders to the CLOB. It is the only component
// allowed to talk to the order endpoint; the execution engine calls it at
// most once per instruction.
type Delegator struct {
	base   string
	client *http.Client
	signer *Signer
	creds  Creds
	rng    *rand.Rand
}

// NewDelegator creates a submitter from a signer and API credentials.
func NewDelegator(baseURL string, client *http.Client, signer *Signer, creds Creds) (*Delegator, error) {
	if signer == nil {
		return nil, errors.New("nil signer")
	}
	if creds.APIKey == "" || creds.Secret == "" || creds.Passphrase == "" {
		return nil, ErrMissingCredentials
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Delegator{
		base:   strings.TrimRight(baseURL, "/"),
		client: client,
		signer: signer,
		creds:  creds,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// signedOrder is the wire form of a signed order.
type signedOrder struct {
	Salt          string `json:"salt"`
	Maker         string `json:"maker"`
	Signer        string `json:"signer"`
	Taker         string `json:"taker"`
	TokenID       string `json:"tokenId"`
	MakerAmount   string `json:"makerAmount"`
	TakerAmount   string `json:"takerAmount"`
	Expiration    string `json:"expiration"`
	Nonce         string `json:"nonce"`
	FeeRateBps    string `json:"feeRateBps"`
	Side          string `json:"side"`
	SignatureType int    `json:"signatureType"`
	Signature     string `json:"signature"`
}

type orderRequest struct {
	Order     signedOrder `json:"order"`
	Owner     string      `json:"owner"`
	OrderType string      `json:"orderType"`
}

type orderResponse struct {
	Success  bool   `json:"success"`
	ErrorMsg string `json:"errorMsg"`
	OrderID  string `json:"orderID"`
	Status   string `json:"status"`
}

// PlaceOrder submits a GTC order for the token: a buy spends sizeUSD at the
// given price, a sell unwinds sizeUSD worth of shares. It returns the
// exchange order id, or a typed failure.
func (d *Delegator) PlaceOrder(ctx context.Context, tokenID string, buy bool, sizeUSD, price float64) (string, error) {
	if price <= 0 || sizeUSD <= 0 {
		return "", errors.New("non-positive order price or size")
	}
	token, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return "", errors.Errorf("malformed token id: %s", tokenID)
	}

	usdc := big.NewInt(int64(sizeUSD * amountScale))
	shares := big.NewInt(int64(sizeUSD / price * amountScale))

	order := &Order{
		Salt:        big.NewInt(d.rng.Int63()),
		Maker:       d.signer.Address(),
		Signer:      d.signer.Address(),
		Taker:       common.Address{},
		TokenID:     token,
		MakerAmount: usdc,
		TakerAmount: shares,
		Expiration:  big.NewInt(0),
		Nonce:       big.NewInt(0),
		FeeRateBps:  big.NewInt(0),
	}
	side := "BUY"
	if !buy {
		// Sells deliver shares and receive USDC.
		order.MakerAmount, order.TakerAmount = shares, usdc
		order.Side = 1
		side = "SELL"
	}

	sig, err := d.signer.SignOrder(order)
	if err != nil {
		return "", err
	}

	body, err := sonic.Marshal(orderRequest{
		Order: signedOrder{
			Salt:        order.Salt.String(),
			Maker:       order.Maker.Hex(),
			Signer:      order.Signer.Hex(),
			Taker:       order.Taker.Hex(),
			TokenID:     order.TokenID.String(),
			MakerAmount: order.MakerAmount.String(),
			TakerAmount: order.TakerAmount.String(),
			Expiration:  order.Expiration.String(),
			Nonce:       order.Nonce.String(),
			FeeRateBps:  order.FeeRateBps.String(),
			Side:        side,
			Signature:   "0x" + hex.EncodeToString(sig),
		},
		Owner:     d.creds.APIKey,
		OrderType: "GTC",
	})
	if err != nil {
		return "", errors.Wrap(err, "encode order request")
	}

	resp, err := d.post(ctx, "/order", body)
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", errors.Wrap(ErrOrderRejected, resp.ErrorMsg)
	}
	logs.Debugf("order accepted, id: %s, status: %s", resp.OrderID, resp.Status)
	return resp.OrderID, nil
}

func (d *Delegator) post(ctx context.Context, path string, body []byte) (orderResponse, error) {
	var decoded orderResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.base+path, bytes.NewReader(body))
	if err != nil {
		return decoded, errors.Wrap(err, "build order request")
	}
	req.Header.Set("Content-Type", "application/json")
	if err := d.authHeaders(req, http.MethodPost, path, body); err != nil {
		return decoded, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return decoded, errors.Wrap(err, "post order")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return decoded, errors.Wrap(err, "read order response")
	}
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return decoded, errors.Errorf("decode order response, status: %s, body: %s", resp.Status, raw)
	}
	return decoded, nil
}

// authHeaders attaches the CLOB L2 HMAC headers.
func (d *Delegator) authHeaders(req *http.Request, method, path string, body []byte) error {
	secret, err := base64.URLEncoding.DecodeString(d.creds.Secret)
	if err != nil {
		return errors.Wrap(err, "decode api secret")
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(ts))
	mac.Write([]byte(method))
	mac.Write([]byte(path))
	mac.Write(body)
	sig := base64.URLEncoding.EncodeToString(mac.Sum(nil))

	req.Header.Set("POLY_ADDRESS", d.signer.Address().Hex())
	req.Header.Set("POLY_SIGNATURE", sig)
	req.Header.Set("POLY_TIMESTAMP", ts)
	req.Header.Set("POLY_API_KEY", d.creds.APIKey)
	req.Header.Set("POLY_PASSPHRASE", d.creds.Passphrase)
	return nil
}
