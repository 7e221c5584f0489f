package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edulog_logins_total",
		Help: "Successful logins.",
	})
	clockInsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edulog_clock_ins_total",
		Help: "Clock-in calls that created or refreshed a ledger row.",
	})
	clockOutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edulog_clock_outs_total",
		Help: "Successful clock-outs.",
	})
)
