// Package storage provides the data-access implementations behind the narrow
// repository interfaces the service depends on: an in-memory store for tests
// and single-process development, and a PostgreSQL store (subpackage
// postgres) for deployments.
package storage
