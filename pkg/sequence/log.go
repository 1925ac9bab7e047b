package sequence

import (
	"github.com/phuslu/log"

	"github.com/pliu/splayseq/pkg/metrics"
)

var logger = &log.DefaultLogger

// SetLogger sets the logger used to report misuse of sequences and
// iterators. Passing nil restores log.DefaultLogger.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = &log.DefaultLogger
	}
	logger = l
}

func warn(op, msg string) {
	metrics.MisuseCount.WithLabelValues(op).Inc()
	logger.Warn().Str("op", op).Msg(msg)
}
