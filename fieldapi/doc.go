// Package fieldapi is a typed client for the field-service REST API. Every
// call goes through a goFieldOps.Session, so bearer attachment, token
// refresh and forced logout are handled below this layer.
//
// Non-2xx responses are returned as *HTTPError. Use errors.Is with
// ErrUnauthorized, ErrForbidden or ErrNotFound to branch on status.
package fieldapi
