package pipeline

import "github.com/prometheus/client_golang/prometheus"

var (
	filesPromoted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nidspipe",
		Subsystem: "watcher",
		Name:      "files_promoted_total",
		Help:      "Capture files promoted from staging into the FFE todo directory.",
	})
	flowsConverted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nidspipe",
		Subsystem: "ffe",
		Name:      "flows_converted_total",
		Help:      "Flow feature rows written across all conversion runs.",
	})
	rowsScored = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nidspipe",
		Subsystem: "fsp",
		Name:      "rows_scored_total",
		Help:      "Feature rows scored by the classifier and anomaly detector.",
	})
	rowsRouted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nidspipe",
		Subsystem: "fsp",
		Name:      "rows_routed_total",
		Help:      "Scored rows routed to benign or suspicious.",
	}, []string{"verdict"})
	uploadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nidspipe",
		Subsystem: "fsp",
		Name:      "upload_failures_total",
		Help:      "Suspicious batch uploads that returned a non-2xx response or transport error.",
	})
	retrainFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nidspipe",
		Subsystem: "fsp",
		Name:      "retrain_failures_total",
		Help:      "Anomaly-model retrain invocations that failed.",
	})
)

func init() {
	prometheus.MustRegister(filesPromoted, flowsConverted, rowsScored, rowsRouted, uploadFailures, retrainFailures)
}
