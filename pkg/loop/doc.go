/*
Package loop implements the engine's main event loop: a single goroutine
that drains a FIFO channel of thunks and invokes each with the engine handle.
Every other goroutine in the process (crypto pool, messenger, remote
uploader) talks to engine state exclusively by pushing a thunk here, never by
touching engine fields directly — this is what keeps the engine single-writer
without a global lock.

Loop is parameterized over the owner type so this package never has to
import pkg/engine; pkg/engine imports loop and instantiates Loop[*Engine].
*/
package loop
