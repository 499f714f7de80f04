// Package repository provides a generic repository abstraction built on Bun
// for CRUD operations, filtering, counting, and pagination.
package repository
