// Package gate runs named phases of verification commands and reports
// structured pass/fail results.
package gate

// Version is the release version of the gate binary.
var Version = "0.3.0"
