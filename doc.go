// Package goFieldOps provides the authenticated request pipeline used by every
// call the field-service client makes against the remote jobs API.
//
// A [Session] attaches the stored bearer token to outbound requests, detects
// expired credentials (HTTP 401), performs a single deduplicated refresh per
// session, replays the requests that were waiting on it, and forces a logout
// when the refresh cannot succeed.
//
// Sessions are safe for concurrent use after construction through
// [Builder.Build]. Independent sessions share no state.
//
// # Architecture boundaries
//
// goFieldOps is the public surface. It exposes [Session], [Builder], [Config]
// and the event/metrics value types. Credential persistence lives in the store
// package, typed endpoint wrappers live in fieldapi.
//
// # What this package must NOT do
//
//   - Interpret response bodies other than the refresh endpoint's.
//   - Retry anything except a single replay after a successful refresh.
//   - Leave one of the two persisted tokens behind when credentials are cleared.
package goFieldOps
