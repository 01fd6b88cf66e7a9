// Package publisher drives the hosted podcast authoring UI through a fixed
// state machine: log in, open the episode wizard, fill metadata, upload the
// audio artifact, optionally attach a thumbnail, then save a draft or
// publish immediately.
//
// The Guard owns the browser session for exactly one Publish call and closes
// it on every exit path. Transitions get at most one retry; captcha
// challenges and unexpected page layouts fail the run immediately. Session
// cookies are cached between runs so a still-valid login skips the form.
package publisher
