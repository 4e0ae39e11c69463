// Package secrets loads service credentials from files.
//
// A service may name a token_file instead of carrying its token inline:
//
//	gateway:
//	  base_url: "https://gateway.talos.internal"
//	  token_file: /var/run/secrets/talos/gateway-token
//
// The file must be mode 0600 or 0400. An inline token or TALOS_TOKEN wins
// over the file.
package secrets
