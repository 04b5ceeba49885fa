package metrics

import "time"

// ObserveDispatch records one handler chain run.
func ObserveDispatch(handlerType, result string, elapsed time.Duration) {
	dispatchTotal.WithLabelValues(handlerType, result).Inc()
	dispatchSeconds.WithLabelValues(handlerType).Observe(elapsed.Seconds())
}

// ObserveModule matches loader.Observer; op is "import" or "reload".
func ObserveModule(_ string, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	moduleLoads.WithLabelValues(op, outcome).Inc()
}
