// Package testsupport provides helpers shared by package tests: temp-dir
// backed configs and ledger stores with automatic cleanup.
package testsupport
