package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var prometheusWSConnTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ws_conn_total",
	Help: "Total number of opened websocket connections",
})

var prometheusWSConnActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ws_conn_active",
	Help: "Total number of active websocket connections",
})

var prometheusWSConnErrTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ws_conn_err_total",
	Help: "Total number of errored out websocket connections",
})

var prometheusWSConnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "ws_conn_duration_seconds",
	Help: "Duration of websocket connections",
})

var prometheusRelayFramesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "relay_frames_total",
	Help: "Total number of frames received for relaying",
})

var prometheusRelayDeliveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "relay_deliveries_total",
	Help: "Total number of frames queued to recipients",
})

var prometheusRelayDeliveryFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "relay_delivery_failures_total",
	Help: "Total number of frames that could not be queued to a recipient",
})

var prometheusRelayRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "relay_rejected_total",
	Help: "Total number of connections rejected because a channel was full",
})

var prometheusRelayChannelsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "relay_channels_active",
	Help: "Number of channels with at least one connection",
})
