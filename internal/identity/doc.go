// Package identity provides the per-installation client identity: a UUID
// generated once and persisted through a kvstore.Store. Callers always go
// through Provider.Get and never read the store directly.
package identity
