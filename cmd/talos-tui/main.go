// talos-tui is the operator console for a Talos deployment.
//
// It keeps a live connection to the gateway and audit services: it
// negotiates health and contract versions with both, then polls metrics,
// audit events and the peer inventory, and draws the combined state on the
// terminal. Partial outages degrade the view instead of ending it.
//
// Usage:
//
//	# Start the console against the services in the environment
//	talos-tui run
//
//	# Use a configuration file and synthetic data
//	talos-tui run --config talos.yaml --mock
//
//	# Probe both services once and exit non-zero on failure
//	talos-tui check
//
//	# Show version information
//	talos-tui version
package main

func main() {
	Execute()
}
