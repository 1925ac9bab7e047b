package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

var (
	OperationCount = prom.NewCounterVec(
		prom.CounterOpts{
			Name: "splayseq_operation_count",
			Help: "Total number of sequence operations applied by the bench runner",
		},
		[]string{"operation"},
	)
	OperationLatencyQuantile = prom.NewGaugeVec(
		prom.GaugeOpts{
			Name: "splayseq_operation_latency_quantile_ns",
			Help: "Quantile of sequence operation latency in nanoseconds",
		},
		[]string{"operation", "quantile"},
	)
	SequenceLength = prom.NewGauge(
		prom.GaugeOpts{
			Name: "splayseq_sequence_length",
			Help: "Number of elements in the benchmarked sequence",
		},
	)
	TreeHeight = prom.NewGauge(
		prom.GaugeOpts{
			Name: "splayseq_tree_height",
			Help: "Height of the splay tree behind the benchmarked sequence",
		},
	)
	VerificationFailureCount = prom.NewCounter(
		prom.CounterOpts{
			Name: "splayseq_verification_failure_count",
			Help: "Total number of bench runs whose sequence diverged from the model",
		},
	)
	MisuseCount = prom.NewCounterVec(
		prom.CounterOpts{
			Name: "splayseq_sequence_misuse_count",
			Help: "Total number of refused sequence calls, by operation",
		},
		[]string{"operation"},
	)
	QueueLength = prom.NewGaugeVec(
		prom.GaugeOpts{
			Name: "splayseq_queue_length",
			Help: "Number of entries in a play queue",
		},
		[]string{"queue"},
	)
	QueueOperationCount = prom.NewCounterVec(
		prom.CounterOpts{
			Name: "splayseq_queue_operation_count",
			Help: "Total number of play queue operations",
		},
		[]string{"queue", "operation"},
	)
	ReportPublishFailureCount = prom.NewCounter(
		prom.CounterOpts{
			Name: "splayseq_report_publish_failure_count",
			Help: "Total number of bench reports that could not be published",
		},
	)
)

func Init() {
	prom.MustRegister(OperationCount)
	prom.MustRegister(OperationLatencyQuantile)
	prom.MustRegister(SequenceLength)
	prom.MustRegister(TreeHeight)
	prom.MustRegister(VerificationFailureCount)
	prom.MustRegister(MisuseCount)
	prom.MustRegister(QueueLength)
	prom.MustRegister(QueueOperationCount)
	prom.MustRegister(ReportPublishFailureCount)
}
