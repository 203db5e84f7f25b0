// Package httputil provides the HTTP plumbing shared by the metadata source
// and the mirror fetcher.
//
// # Overview
//
//   - [NewClient]: an *http.Client with a DNS-caching transport
//   - [CheckStatus]: maps HTTP status codes onto retryable and fatal errors
//   - [Retry]: automatic retry with jittered exponential backoff
//
// # Retry
//
// [Retry] re-runs an operation only when it failed with a [RetryableError]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Any other error is returned immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx, url)
//	})
//
// # Configuration
//
// Defaults are suitable for an interactive installer:
//
//   - Request timeout: 30 seconds for metadata, set by the caller
//   - Max attempts: 3
//   - Base backoff: 1 second, doubling with 20% jitter up to 30 seconds
//   - DNS cache refresh: 5 minutes
package httputil
