// Package config loads and validates the console configuration.
//
// # Sources
//
// Configuration is layered, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. An optional YAML file
//  3. Dotenv files (.env, .env.local)
//  4. TALOS_* environment variables
//
// The most common variables are TALOS_GATEWAY_URL, TALOS_AUDIT_URL,
// TALOS_TUI_MOCK, TALOS_CONTRACTS_MAJOR and TALOS_TOKEN. Setting
// TALOS_TUI_OTLP_ENDPOINT turns on trace export to that collector.
//
// # Example
//
//	gateway:
//	  base_url: "https://gateway.talos.internal"
//	audit:
//	  base_url: "https://audit.talos.internal"
//	contracts_major: "1"
//	http:
//	  max_attempts: 5
//	  total_timeout: 10s
//	coordinator:
//	  poll_interval: 2s
//	  inventory_schedule: "@every 10s"
//	telemetry:
//	  logging:
//	    level: info
//	    file: talos-tui.log
//
// Validation collects every problem into a single ValidationError.
//
// # Hot reload
//
// Watcher observes the YAML file with fsnotify and hands each successfully
// reloaded Config to a callback. Only settings that can change at runtime
// (such as the log level) are expected to be applied from it.
package config
