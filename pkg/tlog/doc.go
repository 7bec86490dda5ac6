// Package tlog provides structured logging for the synchronization core
// using zerolog: a global Logger set up by Init, package-level helpers that
// log through it, and component-, user- and model-scoped child loggers
// (WithComponent, WithUserID, WithModel) whose lines carry those fields.
// Only cmd/turtlcore logs through this package; the core packages do not log.
package tlog
