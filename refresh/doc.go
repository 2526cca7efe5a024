// Package refresh paces UI redraws against the panel's swap windows so a
// buffer is never scanned out while the compositor is still writing it.
//
// A Source runs in the panel's vsync context. A Coordinator runs in the UI
// context. They talk through two binary semaphores flowing in opposite
// directions: the ready token (draw pass finished, may swap) and the swap
// signal (window reached, buffer handed over).
package refresh
