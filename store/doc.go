// Package store persists the credential pair used by the request pipeline.
//
// # Layout
//
// Every backend keeps exactly two keys: [KeyAccessToken] ("authToken") and
// [KeyRefreshToken] ("refreshToken"). Save writes both in one operation and
// Clear removes both in one operation, so a reader never observes one token
// without the other being in the state the writer intended.
//
// # Architecture boundaries
//
// This package owns persistence only. It does NOT decide when credentials are
// written or cleared; that belongs to the Session.
//
// # What this package must NOT do
//
//   - Import goFieldOps or fieldapi (no upward imports).
//   - Log token values.
package store
