// Package commerce implements the entity services: Users, Products, Orders,
// and Payments. Each service composes the connection manager with its own
// cache instances to provide read-through caching and write-then-invalidate
// semantics.
//
// Reads consult the cache first and populate it on miss. Every successful
// write (create, update, delete, stock adjustment, status transition)
// invalidates the owning entity's caches wholesale; there is no selective
// invalidation because list results are keyed on statement text plus
// parameters and cannot be targeted safely.
//
// Partial updates use explicit patch structs with pointer fields: a nil
// field keeps the prior value, while a pointer to a zero value (price 0,
// active false) is a real update.
package commerce
