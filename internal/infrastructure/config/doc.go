// Package config loads the catalog service configuration.
//
// Load reads a YAML file, applies EMOTIONALSONGS_* environment overrides
// and validates the result. An empty path yields defaults plus environment.
// Secrets such as the JWT signing key and the InfluxDB token belong in the
// environment rather than the file. ValidateServe adds the checks that only
// the HTTP server needs.
package config
