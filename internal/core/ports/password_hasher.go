package ports

// PasswordHasher abstracts one-way password hashing. Hash salts every call,
// so two hashes of the same plaintext differ; Verify is a plain predicate and
// reports false for a wrong password rather than erroring.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
