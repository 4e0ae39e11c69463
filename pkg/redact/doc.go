// Package redact sanitizes JSON-like trees before they reach domain records,
// state or logs.
//
// # Rules
//
//   - Map keys on the denylist (authorization, token, secret, password,
//     private_key, api_key, cookie, set-cookie, session, ciphertext, nonce,
//     x-talos-token, x-capability, ...) are replaced with Marker, compared
//     case-insensitively, at any depth.
//   - Strings containing a PEM block are replaced with PEMMarker.
//   - Strings longer than 100 characters shaped like a JWT are replaced with
//     JWTMarker.
//   - Strings longer than 65536 characters keep a 64 character prefix
//     followed by TruncatedMarker.
//
// Value is total, side-effect free and idempotent:
//
//	clean := redact.Value(decoded)
//	// redact.Value(clean) is equal to clean
//
// The HTTP client applies Value exactly once to every parsed response body,
// and the log handler in telemetry/logging applies it to every attribute.
package redact
