package resultpush

import "expvar"

var (
	metricPushQueuedTotal       = expvar.NewInt("result_push_queued_total")
	metricPushDroppedTotal      = expvar.NewInt("result_push_dropped_total")
	metricPushRetryTotal        = expvar.NewInt("result_push_retry_total")
	metricPushRetryDroppedTotal = expvar.NewInt("result_push_retry_dropped_total")
	metricPushSentTotal         = expvar.NewInt("result_push_sent_total")
	metricPushFailedTotal       = expvar.NewInt("result_push_failed_total")
	metricPushCircuitOpenTotal  = expvar.NewInt("result_push_circuit_open_total")
	metricPushQueueLen          = expvar.NewInt("result_push_queue_len")
	metricPushConfigReloadTotal = expvar.NewInt("result_push_config_reload_total")
	metricPushConfigReloadError = expvar.NewInt("result_push_config_reload_error_total")
)
