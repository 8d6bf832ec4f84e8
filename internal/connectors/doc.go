// Package connectors provides implementations of the Connector interface.
// A connector reads lecture subtitle files from a source and hands them
// to ingest as domain.RawFile values.
//
// The filesystem connector walks a local course folder. Collect drains any
// connector into a slice.
package connectors
