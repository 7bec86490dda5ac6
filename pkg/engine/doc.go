/*
Package engine wires together the local store, crypto pool, main loop,
profile, and event broker into the one handle the CLI and any embedder talks
to: Engine. It is constructed with New, lifecycle-managed with
Start/Shutdown, and takes local mutations through Dispatch and SaveFile and
records from the remote API through ApplyIncoming.
*/
package engine
