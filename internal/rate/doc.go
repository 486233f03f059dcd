// Package rate throttles login and refresh attempts with Redis fixed-window
// counters (INCR, then EXPIRE on the first hit of a window).
//
// Key layout:
//   - fo:login:<email>      failed logins per account
//   - fo:login-ip:<ip>      failed logins per client address
//   - fo:refresh:<sha256>   refresh calls per refresh token
package rate
