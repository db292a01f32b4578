package poloniex

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poloniex/internal/ws"
	"poloniex/pkg/core"
)

func newTestPushClient(t *testing.T) *PushClient {
	t.Helper()
	client := NewPushClient("wss://example.com")
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestPushRoutesFrameToRegisteredCallback(t *testing.T) {
	client := newTestPushClient(t)

	var got json.RawMessage
	require.NoError(t, client.Subscribe(1002, func(data json.RawMessage) {
		got = data
	}))

	client.handleFrame([]byte(`[1002,530,["payload"]]`))
	assert.JSONEq(t, `["payload"]`, string(got))
}

func TestPushDropsFrameForUnsubscribedChannel(t *testing.T) {
	client := newTestPushClient(t)

	called := false
	require.NoError(t, client.Subscribe(1002, func(json.RawMessage) {
		called = true
	}))

	client.handleFrame([]byte(`[1003,530,["other channel"]]`))
	assert.False(t, called)
}

func TestPushIgnoresHeartbeat(t *testing.T) {
	client := newTestPushClient(t)

	called := false
	require.NoError(t, client.Subscribe(ChannelHeartbeat, func(json.RawMessage) {
		called = true
	}))

	client.handleFrame([]byte(`[1010]`))
	assert.False(t, called)
}

func TestPushIgnoresGarbageFrames(t *testing.T) {
	client := newTestPushClient(t)
	require.NoError(t, client.Subscribe(1002, func(json.RawMessage) {
		t.Fatal("callback must not fire")
	}))

	client.handleFrame([]byte(`not json`))
	client.handleFrame([]byte(`{}`))
	client.handleFrame([]byte(`[]`))
}

func TestPushBindsChannelNameOnAck(t *testing.T) {
	client := newTestPushClient(t)

	var got json.RawMessage
	require.NoError(t, client.SubscribeChannelName("BTC_ETH", func(data json.RawMessage) {
		got = data
	}))

	// The gateway acks with the numeric id it assigned to the name.
	client.handleFrame([]byte(`[148,1]`))
	client.handleFrame([]byte(`[148,2,["book update"]]`))
	assert.JSONEq(t, `["book update"]`, string(got))
}

func TestPushUnsubscribeRemovesCallback(t *testing.T) {
	client := newTestPushClient(t)

	called := false
	require.NoError(t, client.Subscribe(1002, func(json.RawMessage) {
		called = true
	}))
	require.NoError(t, client.Unsubscribe(1002))

	client.handleFrame([]byte(`[1002,530,["payload"]]`))
	assert.False(t, called)
}

func TestSubscribeTickerDecodesUpdate(t *testing.T) {
	client := newTestPushClient(t)

	var update *core.TickerUpdate
	require.NoError(t, client.SubscribeTicker(func(u *core.TickerUpdate) {
		update = u
	}))

	client.handleFrame([]byte(`[1002,530,[149,"219.42870877","219.85995995",
		"219.00000016","0.01830508","1617.30204183","7.37199773",0,
		"224.44803729","214.87902002"]]`))

	require.NotNil(t, update)
	assert.Equal(t, int64(149), update.ID)
	assert.Equal(t, "219.42870877", update.Last.String())
	assert.Equal(t, "219.85995995", update.LowestAsk.String())
	assert.Equal(t, "0.01830508", update.PercentChange.String())
	assert.False(t, update.IsFrozen)
	assert.Equal(t, "214.87902002", update.Low24hr.String())
}

func TestSubscribeTickerIgnoresMalformedUpdate(t *testing.T) {
	client := newTestPushClient(t)

	called := false
	require.NoError(t, client.SubscribeTicker(func(*core.TickerUpdate) {
		called = true
	}))

	client.handleFrame([]byte(`[1002,530,[149,"only","three"]]`))
	assert.False(t, called)
}

func TestPushStateLifecycle(t *testing.T) {
	client := NewPushClient("wss://example.com")
	assert.Equal(t, ws.StateDisconnected, client.State())

	require.NoError(t, client.Close())
	assert.Equal(t, ws.StateClosed, client.State())
}
