package website

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/prices"
	"github.com/radixwiki/wiki/src/render"
)

const (
	priceWriteWait  = 10 * time.Second
	pricePongWait   = 60 * time.Second
	pricePingPeriod = (pricePongWait * 9) / 10
	priceMaxMessage = 512
)

type apiQuote struct {
	*prices.Quote
	Change24h       float64 `json:"change24h"`
	USDFormatted    string  `json:"usdFormatted"`
	ChangeFormatted string  `json:"changeFormatted"`
}

func quoteToApi(q *prices.Quote) apiQuote {
	return apiQuote{
		Quote:           q,
		Change24h:       q.Change24h(),
		USDFormatted:    render.FormatUSD(q.USD),
		ChangeFormatted: render.FormatChange(q.Change24h()),
	}
}

func APIGetPrice(c *RequestContext) ResponseData {
	if c.Services.Prices == nil {
		return apiError(c, http.StatusServiceUnavailable, NewSafeError(nil, prices.ErrUnavailable.Error()))
	}

	q, err := c.Services.Prices.Quote(c, c.PathParams["address"])
	if err != nil {
		return apiError(c, http.StatusBadGateway, NewSafeError(err, prices.ErrUnavailable.Error()))
	}
	return writeApiJson(c, http.StatusOK, quoteToApi(q))
}

// priceMessage is what the live socket sends after every fetch.
type priceMessage struct {
	USDFormatted    string  `json:"usdFormatted,omitempty"`
	ChangeFormatted string  `json:"changeFormatted,omitempty"`
	Change24h       float64 `json:"change24h"`
	Error           string  `json:"error,omitempty"`
}

func priceUpdateToMessage(u prices.Update) priceMessage {
	if u.Err != nil || u.Quote == nil {
		return priceMessage{Error: prices.ErrUnavailable.Error()}
	}
	return priceMessage{
		USDFormatted:    render.FormatUSD(u.Quote.USD),
		ChangeFormatted: render.FormatChange(u.Quote.Change24h()),
		Change24h:       u.Quote.Change24h(),
	}
}

var priceUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkSameOrigin,
}

// checkSameOrigin allows browsers on our own host. Requests without an
// Origin header don't come from a browser page.
func checkSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	o, err := url.Parse(origin)
	if err != nil {
		return false
	}
	base, err := url.Parse(config.Config.BaseUrl)
	if err != nil {
		return false
	}
	return strings.EqualFold(o.Host, base.Host) || strings.EqualFold(o.Host, r.Host)
}

// APIPriceLive streams quotes for one asset over a websocket. A single loop
// fetches and writes, so updates arrive in order. Fetching stops as soon as
// the socket closes.
func APIPriceLive(c *RequestContext) ResponseData {
	if c.Services.Prices == nil {
		return apiError(c, http.StatusServiceUnavailable, NewSafeError(nil, prices.ErrUnavailable.Error()))
	}
	address := c.PathParams["address"]

	conn, err := priceUpgrader.Upgrade(c.Res, c.Req, nil)
	if err != nil {
		// The upgrader has already written an error response.
		c.Logger.Debug().Err(err).Msg("failed to upgrade price socket")
		return Hijacked()
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c)
	defer cancel()

	go func() {
		defer cancel()
		conn.SetReadLimit(priceMaxMessage)
		conn.SetReadDeadline(time.Now().Add(pricePongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pricePongWait))
		})
		for {
			// Clients never send anything; reading only notices the close.
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	interval := c.Services.PricePollInterval
	if interval <= 0 {
		interval = prices.DefaultPollInterval
	}
	updates := c.Services.Prices.Watch(ctx, address, interval)

	ping := time.NewTicker(pricePingPeriod)
	defer ping.Stop()

	c.Logger.Debug().Str("address", address).Msg("price socket opened")
	defer c.Logger.Debug().Str("address", address).Msg("price socket closed")

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(priceWriteWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return Hijacked()
		case u, ok := <-updates:
			if !ok {
				return Hijacked()
			}
			conn.SetWriteDeadline(time.Now().Add(priceWriteWait))
			if err := conn.WriteJSON(priceUpdateToMessage(u)); err != nil {
				return Hijacked()
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(priceWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return Hijacked()
			}
		}
	}
}
