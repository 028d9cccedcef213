package binance

import (
	"context"
	"fmt"
	"strings"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"
)

const _binanceBaseWsUrl = "wss://stream.binance.com:9443/ws"

// TradePub streams the public trade feed. The underlying websocket manager
// owns reconnection with backoff; subscriptions are re-sent on reconnect.
type TradePub struct {
	wss *ws.WebSocket
}

func NewTradePub(ctx context.Context) *TradePub {
	return &TradePub{
		wss: ws.New(ctx, _binanceBaseWsUrl),
	}
}

func (repo *TradePub) Len() int {
	return repo.wss.Len()
}

func (repo *TradePub) Close() {
	repo.wss.Close()
}

func (repo *TradePub) StartWebsocket(ctx context.Context) error {
	if err := repo.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start wss")
	}

	return nil
}

type TradeSubscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

type TradeSubscribeResponse struct {
	ID     int64 `json:"id"`
	Result any   `json:"result"`
}

func subscriberResponseParser(m ws.Message) (TradeSubscribeResponse, bool) {
	var resp TradeSubscribeResponse
	err := m.Unmarshal(&resp)
	return resp, err == nil
}

// SubscribeTrades subscribes the 'Trade Streams' feed for one symbol.
func (repo *TradePub) SubscribeTrades(ctx context.Context, symbol string) error {
	appendIntoRegister := true
	if err := repo.wss.SendAndWait(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, ws *ws.WebSocket) error {
			payload := TradeSubscribeRequest{
				Method: "SUBSCRIBE",
				Params: []string{
					fmt.Sprintf("%s@trade", strings.ToLower(symbol)),
				},
				ID: 1,
			}

			if err := ws.WriteJSON(payload); err != nil {
				return errors.Wrap(err, "write subscribe payload").With("payload", payload)
			}

			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			resp, ok := subscriberResponseParser(m)
			if !ok || resp.ID != 1 {
				return false, nil
			}

			if resp.Result != nil {
				return false, errors.Errorf("subscribe and wait, err: %+v", resp.Result)
			}
			return true, nil
		},
	}, appendIntoRegister); err != nil {
		return errors.Wrap(err, "send and wait")
	}

	return nil
}

type Trade struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"`
}

func (repo *TradePub) ObserveTrades(ctx context.Context, handler func(t Trade)) (unsubscribe func()) {
	ch, cancel := repo.wss.Subscribe()

	go func() {
		defer cancel()
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}

				resp, ok := ws.ReadMessage[Trade](m)
				if !ok || resp.EventType != "trade" {
					continue
				}

				handler(resp)
			}
		}
	}()

	return cancel
}
