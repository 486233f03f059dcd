// Package middleware guards HTTP handlers with bearer access tokens.
//
// [Guard] reads the Authorization header, hands the token to a [Validator]
// and stores the resulting [Principal] in the request context. [RequireRole]
// additionally restricts a route to the listed roles. Rejections are JSON
// bodies of the form {"detail": "..."} with status 401 or 403.
package middleware
