package metrics

import (
	"time"

	apperrors "github.com/wavechat/wavechat-api/internal/errors"
	"github.com/wavechat/wavechat-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Direction constants for bridge traffic.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// BridgeMetric captures one message traversal of the IRC bridge.
type BridgeMetric struct {
	Direction string
	Result    string
	Duration  time.Duration
	Err       error
}

// EmitBridgeMessage emits standardised bridge traffic metrics.
func EmitBridgeMessage(sink statsd.Sink, in BridgeMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"direction": in.Direction,
		"result":    in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if code := apperrors.GetCode(in.Err); code != "" {
			tags["error_code"] = string(code)
		}
	}

	sink.Count("bridge.message", 1, tags)
	if in.Duration > 0 {
		sink.Timing("bridge.message.duration", in.Duration, tags)
	}
}

// EmitBridgeReconnect counts an IRC re-registration after the initial
// connect. A climbing value means the bridge keeps losing its connection.
func EmitBridgeReconnect(sink statsd.Sink) {
	if sink == nil {
		return
	}
	sink.Count("bridge.reconnect", 1, nil)
}

// EmitSessionRefresh counts a lazy session refresh outcome.
func EmitSessionRefresh(sink statsd.Sink, result string) {
	if sink == nil {
		return
	}
	sink.Count("session.refresh", 1, map[string]string{"result": result})
}
