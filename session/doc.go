// Package session owns the mutable state the pure core deliberately keeps
// out of its own functions: the current config snapshot, change
// notifications, per-channel cosmetic settings with mirror groups, the
// clipboard, remembered dither settings, and debounced write-through to the
// engine.
//
// A Session is the single place edits funnel through: every transform starts
// from the session's current document and ends with Replace, so concurrent
// UI surfaces always rebuild from the latest model (last writer wins at
// config granularity).
package session
