package ark

// Store persists one archive's change log. The in-memory log is authoritative
// at runtime; the store provides durability and replay on open.
type Store interface {
	// AppendEntry durably records a log entry. Entries arrive in version order.
	AppendEntry(e Entry) error

	// LoadEntries returns all persisted entries in version order.
	LoadEntries() ([]Entry, error)
}
