// Package seedstore keeps the wallet mnemonic encrypted at rest for
// the host-side simulator. The engine itself never persists anything;
// this is the stand-in for the host device's secure element.
package seedstore
