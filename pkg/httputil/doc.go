// Package httputil provides retry helpers for the outgoing HTTP clients.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only for
// errors marked transient with [RetryableError]:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// Callers decide what is transient. The rendering-service client marks
// network failures and timeouts as retryable; a non-2xx response from the
// service is a hard failure and is returned immediately.
//
// The delay doubles after every failed attempt. A cancelled context stops
// the loop and returns ctx.Err().
package httputil
