/*
Package events provides an in-memory pub/sub broker used both as the
engine's outward IPC notification path ("sync:update", "app:shutdown") and,
internally, by the profile to fan out in-memory change notifications.

Publish never waits on a subscriber: events go onto a buffered intake
channel (Publish blocks only while that buffer is full) and a single
broadcast goroutine fans them out to subscribers, each with its own buffered
channel. A full subscriber buffer drops the event rather than blocking the
publisher — the main loop must never stall waiting on a slow UI listener.

Event vocabulary produced by this core:

  - sync:update   — a SyncRecord snapshot, published each time
    SaveModel/DeleteModel queue an outgoing record; there is no check for
    whether sync has reached a steady state
  - profile:update — the in-memory profile (spaces/boards/notes) changed
  - app:shutdown  — the engine is tearing down
*/
package events
