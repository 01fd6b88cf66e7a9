// Package services holds the shared error taxonomy used by pipeline stages.
//
// Stage implementations tag failures with one of the sentinel markers so the
// orchestrator can decide between in-run retry, abort, and manual review
// without inspecting error strings. Wrap composes the marker with stage and
// operation context while keeping errors.Is classification intact.
package services
