// Package resilience holds the fault tolerance building blocks the infra
// clients share: per-service circuit breakers and bounded retry with
// exponential backoff.
//
// Every external dependency (Telegram, the text and image models,
// Calendarific) sits behind its own breaker, and transient failures are
// retried with jitter before the pipeline degrades.
//
//	cb := circuitbreaker.New(circuitbreaker.TelegramAPIConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return sendPost()
//	})
//
//	err := retry.WithBackoff(ctx, retry.TelegramAPIConfig(), func() error {
//	    return performOperation()
//	})
package resilience
