package poloniex

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"poloniex/internal/ws"
	"poloniex/pkg/core"
)

// Well-known push gateway channels.
const (
	ChannelAccount   int64 = 1000
	ChannelTicker    int64 = 1002
	ChannelVolume    int64 = 1003
	ChannelHeartbeat int64 = 1010
)

// Callback receives the data payload of one push frame. Callbacks run on
// the read loop and must not block.
type Callback func(data json.RawMessage)

// PushClient subscribes to push gateway channels and routes inbound
// frames to per-channel callbacks. There is no automatic reconnect: a
// dropped connection stays down until Connect is called again, and Close
// is terminal.
type PushClient struct {
	conn   *ws.Client
	logger zerolog.Logger

	mu sync.RWMutex
	// subs maps channel id to its callback.
	subs map[int64]Callback
	// pendingNames holds name-keyed subscriptions awaiting the ack that
	// reveals their numeric channel id, oldest first.
	pendingNames []pendingName
}

type pendingName struct {
	name     string
	callback Callback
}

type wsCommand struct {
	Command string `json:"command"`
	Channel any    `json:"channel"`
}

// NewPushClient creates a push client for the given gateway URL.
func NewPushClient(url string) *PushClient {
	p := &PushClient{
		conn:   ws.NewClient(ws.Config{URL: url}),
		logger: zerolog.Nop(),
		subs:   make(map[int64]Callback),
	}
	p.conn.OnFrame(p.handleFrame)
	return p
}

// SetLogger configures the logger for the push client and its connection.
func (p *PushClient) SetLogger(logger zerolog.Logger) {
	p.logger = logger
	p.conn.SetLogger(logger)
}

// Connect dials the gateway and replays any subscriptions registered
// while disconnected. A handshake failure surfaces as a connect error.
func (p *PushClient) Connect(ctx context.Context) error {
	if err := p.conn.Connect(ctx); err != nil {
		return core.NewExchangeErrorWithCode(core.ErrorTypeConnect,
			core.ErrCodeConnect, err.Error())
	}

	p.mu.RLock()
	channels := make([]any, 0, len(p.subs)+len(p.pendingNames))
	for id := range p.subs {
		channels = append(channels, id)
	}
	for _, pending := range p.pendingNames {
		channels = append(channels, pending.name)
	}
	p.mu.RUnlock()

	for _, channel := range channels {
		if err := p.sendCommand("subscribe", channel); err != nil {
			return err
		}
	}
	return nil
}

// Close shuts down the connection. No callback fires after Close returns.
func (p *PushClient) Close() error {
	return p.conn.Close()
}

// State returns the connection state.
func (p *PushClient) State() ws.ConnState {
	return p.conn.State()
}

// Subscribe registers a callback for a numeric channel id and, when
// connected, sends the subscribe command. Registering while disconnected
// is allowed; Connect replays the subscription.
func (p *PushClient) Subscribe(channelID int64, callback Callback) error {
	p.mu.Lock()
	p.subs[channelID] = callback
	p.mu.Unlock()

	if !p.conn.IsConnected() {
		return nil
	}
	return p.sendCommand("subscribe", channelID)
}

// SubscribeChannelName registers a callback for a name-keyed channel
// (currency pair channels are subscribed by name). The gateway answers
// with the numeric id in the subscription ack; frames are routed once
// that ack arrives.
func (p *PushClient) SubscribeChannelName(name string, callback Callback) error {
	p.mu.Lock()
	p.pendingNames = append(p.pendingNames, pendingName{name: name, callback: callback})
	p.mu.Unlock()

	if !p.conn.IsConnected() {
		return nil
	}
	return p.sendCommand("subscribe", name)
}

// SubscribeTicker subscribes to the ticker channel and decodes each
// update. The update carries the numeric market id; mapping it to a pair
// name is the caller's job (the REST Ticker result has the ids).
func (p *PushClient) SubscribeTicker(callback func(*core.TickerUpdate)) error {
	return p.Subscribe(ChannelTicker, func(data json.RawMessage) {
		update, err := decodeTickerUpdate(data)
		if err != nil {
			p.logger.Warn().Err(err).Msg("bad ticker frame")
			return
		}
		callback(update)
	})
}

// Unsubscribe sends the unsubscribe command for a channel and removes its
// callback.
func (p *PushClient) Unsubscribe(channelID int64) error {
	p.mu.Lock()
	delete(p.subs, channelID)
	p.mu.Unlock()

	if !p.conn.IsConnected() {
		return nil
	}
	return p.sendCommand("unsubscribe", channelID)
}

func (p *PushClient) sendCommand(command string, channel any) error {
	if err := p.conn.SendJSON(wsCommand{Command: command, Channel: channel}); err != nil {
		return fmt.Errorf("send %s: %w", command, err)
	}
	return nil
}

// handleFrame routes one inbound gateway frame. Frames are arrays of the
// form [channelID, seq, data]; two-element frames are subscription acks
// (seq 1 subscribed, 0 failed) and heartbeats carry only the channel id.
func (p *PushClient) handleFrame(data []byte) {
	var frame []json.RawMessage
	if err := sonic.Unmarshal(data, &frame); err != nil || len(frame) == 0 {
		p.logger.Debug().Err(err).Msg("unparseable push frame")
		return
	}

	channelID := rawInt(frame[0])
	if channelID == ChannelHeartbeat {
		return
	}

	if len(frame) < 3 {
		p.handleAck(channelID, frame)
		return
	}

	p.mu.RLock()
	callback, ok := p.subs[channelID]
	p.mu.RUnlock()

	if !ok {
		// Frames for channels nobody subscribed to are dropped; the log
		// line is the only trace.
		p.logger.Debug().
			Int64("channel", channelID).
			Msg("dropping frame for unsubscribed channel")
		return
	}

	callback(frame[2])
}

// handleAck binds the oldest name-keyed subscription to the numeric id
// the gateway assigned it, and logs ack outcomes.
func (p *PushClient) handleAck(channelID int64, frame []json.RawMessage) {
	seq := int64(1)
	if len(frame) > 1 {
		seq = rawInt(frame[1])
	}
	if seq == 0 {
		p.logger.Warn().
			Int64("channel", channelID).
			Msg("subscription rejected")
		return
	}

	p.mu.Lock()
	if _, known := p.subs[channelID]; !known && len(p.pendingNames) > 0 {
		pending := p.pendingNames[0]
		p.pendingNames = p.pendingNames[1:]
		p.subs[channelID] = pending.callback
		p.logger.Debug().
			Str("name", pending.name).
			Int64("channel", channelID).
			Msg("channel name bound")
	}
	p.mu.Unlock()

	p.logger.Debug().
		Int64("channel", channelID).
		Msg("subscription acknowledged")
}

// decodeTickerUpdate unpacks the positional ticker payload: id, last,
// lowestAsk, highestBid, percentChange, baseVolume, quoteVolume,
// isFrozen, high24hr, low24hr.
func decodeTickerUpdate(data json.RawMessage) (*core.TickerUpdate, error) {
	var fields []json.RawMessage
	if err := sonic.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode ticker update: %w", err)
	}
	if len(fields) < 10 {
		return nil, fmt.Errorf("ticker update has %d fields, want 10", len(fields))
	}

	update := &core.TickerUpdate{
		ID:       rawInt(fields[0]),
		IsFrozen: rawBool(fields[7]),
	}
	var err error
	if update.Last, err = rawDecimal(fields[1]); err != nil {
		return nil, err
	}
	if update.LowestAsk, err = rawDecimal(fields[2]); err != nil {
		return nil, err
	}
	if update.HighestBid, err = rawDecimal(fields[3]); err != nil {
		return nil, err
	}
	if update.PercentChange, err = rawDecimal(fields[4]); err != nil {
		return nil, err
	}
	if update.BaseVolume, err = rawDecimal(fields[5]); err != nil {
		return nil, err
	}
	if update.QuoteVolume, err = rawDecimal(fields[6]); err != nil {
		return nil, err
	}
	if update.High24hr, err = rawDecimal(fields[8]); err != nil {
		return nil, err
	}
	if update.Low24hr, err = rawDecimal(fields[9]); err != nil {
		return nil, err
	}
	return update, nil
}
