/*
Package blocklist implements the Block List Store: the authoritative ordered collection
of blocks for one page, and the only component permitted to change block identity,
order or visibility.

Every mutation is copy-on-write: the store computes the full next list and swaps it in,
then renumbers Order so that it is always the dense sequence 0..N-1 matching the slice
position. Operations on unknown ids return false instead of failing, since callers are
UI-driven and may hold a stale selection.
*/
package blocklist
