package repositories

// LockMode selects the row lock taken on a department.
type LockMode int

const (
	// LockShared is held by every ledger mutation (FOR SHARE).
	LockShared LockMode = iota
	// LockExclusive is held by reconciliation (FOR UPDATE) so it never interleaves with a credit.
	LockExclusive
)

func (m LockMode) String() string {
	if m == LockExclusive {
		return "exclusive"
	}
	return "shared"
}
