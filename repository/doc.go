// Package repository provides a generic repository abstraction built on Bun
// for CRUD operations, exact-match filtering, pagination, partial updates,
// soft or hard deletes, and ancestor queries over the administrative hierarchy.
package repository
