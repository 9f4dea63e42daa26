/*
Package session serializes edits to persisted pages.

A Manager wraps a ports.PageStore with per-page locks (reference counted so idle pages
leave nothing behind) and, optionally, a ports.DistributedLocker so that replicas sharing
a Redis store do not interleave load/mutate/save cycles on the same page.
*/
package session
