/*
Package thredder offloads CPU-bound crypto work (encrypt, decrypt, key wrap)
onto a fixed pool of worker goroutines so the main loop never blocks on it.

A worker's result never reaches the caller directly: it's wrapped in a thunk
and handed to a completion sink (in practice, pkg/loop.Push) so the result is
only ever observed from the single-writer main loop. Run returns a Future
whose Wait blocks until that thunk has executed.

Payload is a closed set of transferable result shapes so worker closures
stay generic without resorting to `any` everywhere a result crosses the
goroutine boundary.
*/
package thredder
