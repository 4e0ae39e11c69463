// Package security groups the credential and transport security helpers of
// the console: tls builds the client TLS configuration for the upstream
// pool and secrets reads service tokens from mounted files.
package security
