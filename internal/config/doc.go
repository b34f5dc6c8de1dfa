// Package config defines the settings used by the zone binaries and provides
// helpers to load, validate and save them in YAML format.
//
// Structural problems (missing server or hub address) fail Load. Zone
// parameters are resolved separately by ZoneConfig.Resolve, which never fails
// and reports every fallback as a zone configuration error instead.
package config
