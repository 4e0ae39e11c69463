// Package tls builds the client-side TLS configuration for connections to
// the gateway and audit services.
//
//	http:
//	  tls:
//	    ca_file: /etc/talos/ca.pem        # trusted in addition to system roots
//	    cert_file: /etc/talos/tui.pem     # client certificate for mTLS
//	    key_file: /etc/talos/tui-key.pem
//	    min_version: "1.3"                # default 1.2
//
// The client certificate must be valid when loaded. ExpiryWarning lets the
// caller log a warning when it is about to expire.
package tls
