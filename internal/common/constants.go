// Package common contains shared constants and sentinel errors used across
// SocietyHub client components.
package common

// Durable storage keys. The names match the keys the web frontend keeps in
// localStorage so a blob exported from a browser profile can be imported as-is.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
	KeyAppSettings  = "app_settings"
	KeyTheme        = "theme"
)

// AuthorizationHeaderName carries the bearer access token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName carries a per-request correlation id.
const RequestIDHeaderName = "X-Request-ID"

// BearerPrefix is prepended to the access token in AuthorizationHeaderName.
const BearerPrefix = "Bearer "
