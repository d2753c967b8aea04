// Package session implements the authentication lifecycle for spotivr.
//
// The central type is Router, which owns the current Session and drives it
// through its states: on startup it decides whether a stored session is
// still valid, on demand it runs the interactive browser login flow, and
// in the background it renews the access token shortly before expiry via
// a single-flight RefreshScheduler.
//
// Collaborators observe the lifecycle through a fire-and-forget event Bus
// carrying three event kinds: an error message, a token change, and a
// route change (login or home screen). The router is the only producer;
// consumers such as the 3D scene layer or the playback client subscribe
// independently and may not block the router.
package session
