// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher turns a plaintext password into an irreversible, salted
// credential and verifies plaintext against it.
type PasswordHasher interface {
	// Hash returns a fresh salted credential; two calls on the same input differ.
	Hash(password string) (string, error)

	// Check reports whether password matches hash. It never fails loudly.
	Check(password, hash string) bool
}
