/*
Package dispatcher applies one sync record to local state: it validates,
permission-checks, persists, and (unless told to skip) queues the record's
remote counterpart.

Dispatch takes a Context rather than an *engine.Engine: the engine package
wires this dispatcher in as its public entrypoint, so depending on *Engine
here would create an import cycle. Context carries exactly the collaborators
a dispatch needs (store, profile, crypto pool, event broker, acting user).
*/
package dispatcher
