package enr

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var recordsDecoded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "enr_records_decoded_total",
		Help: "Count of node records decoded, labeled by result.",
	},
	[]string{"result"},
)
