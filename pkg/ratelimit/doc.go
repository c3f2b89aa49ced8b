// Package ratelimit throttles requests per key with token buckets from
// golang.org/x/time/rate. Buckets idle for longer than the configured TTL are
// evicted by Cleanup.
package ratelimit
