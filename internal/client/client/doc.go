// Package client is the HTTP facade every SocietyHub backend call goes
// through.
//
// # Overview
//
// HTTPClient attaches "Authorization: Bearer <access>" from a TokenStore and
// an X-Request-ID to each request. When a request to any endpoint other than
// /auth/login/ or /auth/register/ answers 401, the facade posts the refresh
// token to /auth/refresh/, stores the new access token and replays the
// original request exactly once. If the refresh fails, the token store is
// cleared and ErrAuthExpired is returned; navigation is left to the caller.
//
// # Error Handling
//
//   - *NetworkError: no response (DNS, refused, reset, context deadline).
//     errors.Is(err, ErrNoResponse) holds.
//   - *APIError: any non-2xx response, body passed through verbatim.
//   - ErrAuthExpired: unrecoverable 401.
//
// The facade imposes no timeout of its own. Bound calls with the context.
//
// # Metrics
//
// Metrics exposes request counts, refresh outcomes and latency as Prometheus
// collectors; pass them with WithMetrics.
package client
