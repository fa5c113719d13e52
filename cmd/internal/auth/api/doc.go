// Package authapi exposes the account and session lifecycle over HTTP:
// register, login, refresh, logout, change-password, and the auth-gated
// profile/media endpoints.
//
// Tokens travel as HttpOnly cookies (accessToken, refreshToken) with a
// body-field fallback for the refresh token and a bearer-header fallback for
// the access token. When both cookie and fallback are present, the cookie
// wins.
package authapi
