// Package adapters provides typed access to the gateway and audit services.
//
// The coordinator depends only on the GatewayAdapter and AuditAdapter
// interfaces. New picks the implementation once at startup: HTTP adapters
// built on the resilient client, or synthetic mock adapters.
//
// Decoding is lenient. Unknown fields are ignored and missing optional
// fields take defaults. Only fields needed to classify a service are
// required: service_version and contracts_version for a version, status
// for health (absent means not ready). Lists are capped at MaxListItems
// and undecodable items are logged and skipped.
package adapters
