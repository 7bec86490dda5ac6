/*
Package storage is the local encrypted-object store: a thin typed facade
over BoltDB (go.etcd.io/bbolt). Every persisted entity implements
models.Storable and names its own bucket; storage itself knows nothing about
model semantics, only how to marshal a value to JSON and put it under a
bucket/id pair.

Buckets are created up front in NewBoltStore: "spaces", "boards", "notes",
"files", "sync", "keychain", "user". Save is atomic per item (one bbolt
transaction); bbolt's single-writer semantics serialize concurrent writers,
and reads always observe the most recently committed write.
*/
package storage
