// Package vu assembles the real-time audio analysis pipeline: a capture
// source feeding per-block loudness and band-energy readings through a
// bounded transport into a rolling history store.
//
// The capture callback runs analysis in place and hands results off without
// blocking; a consumer goroutine owned by the Pipeline drains the transport
// and updates the history, which presentation layers read via Snapshot.
package vu
