package iyzico

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var gatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Total number of payment gateway requests by operation and result",
	},
	[]string{"operation", "result"},
)

const (
	resultSuccess     = "success"
	resultRejected    = "rejected"
	resultUnavailable = "unavailable"
)
