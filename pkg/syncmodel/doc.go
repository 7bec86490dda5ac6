/*
Package syncmodel implements the sync contract every synced model type
participates in: Incoming (applying a record from the remote API to the
local store) and Outgoing (persisting a local mutation and queuing it for
remote propagation).

Go has no default-method inheritance, so rather than requiring every model
type to reimplement DBSave/DBDelete/Transform/SkipIncomingSync, the
defaults/overrides split is expressed as a Hooks value: a struct of
functions. DefaultHooks(ty) gives the common behavior (DBSave/DBDelete call
straight through to the store, no transform, never skip); FileDataHooks
overrides DBSave/DBDelete/SyncType for FileData's on-disk-body semantics.
*/
package syncmodel
