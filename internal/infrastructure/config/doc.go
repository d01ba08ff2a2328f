// Package config loads and validates Spectra Core configuration.
//
// Configuration is read from a YAML file, merged over hardcoded defaults,
// and finally overridden by SPECTRA_* environment variables. The loaded
// Config is passed by value into each subsystem; packages never read the
// environment or the file themselves.
//
// Sections:
//   - site:        installation identity
//   - database:    SQLite settings (device properties store)
//   - mqtt:        device bus broker connection
//   - influxdb:    attribute-change archive (optional)
//   - api:         HTTP API server
//   - logging:     level/format/output
//   - pool:        event worker pool sizing
//   - controllers: controller devices to bring up at startup
package config
