// Package database provides connection providers (engines), session
// lifecycle management, entity registration, schema bootstrap, error
// classification, logging, and health checks built on top of Bun.
package database
