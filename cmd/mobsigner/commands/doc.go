// Package commands implements the mobsigner CLI: a host-side
// simulator that drives the transaction engine in-process through the
// APDU codec, standing in for a real secure-element device.
package commands
