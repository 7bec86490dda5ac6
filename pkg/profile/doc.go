/*
Package profile holds the in-memory decrypted replica of one user's data —
spaces, boards, notes, the keychain, and per-space membership — behind a
single RWMutex. The dispatcher and the incoming-sync pipeline are its only
writers; every other reader (the UI, via the Messenger) only ever sees a
consistent snapshot.

Each mutator of the user, spaces, boards and notes publishes
"profile:update" on the profile's events.Broker so listeners are notified
without polling; membership, keychain and master-key changes publish
nothing. The keychain here is the in-memory
mirror of the store's "keychain" bucket: callers are responsible for
persisting keychain changes to storage.Store themselves, the same way they
persist model changes.
*/
package profile
