package domain

import (
	"strings"
	"time"
)

// AccountNameSeparator splits an account full name into its path segments.
const AccountNameSeparator = ":"

// Account is a node of the chart of accounts.
type Account struct {
	ID        string
	FullName  string
	Currency  string
	CreatedAt time.Time
}

// Segments returns the path segments of the account full name.
func (a *Account) Segments() []string {
	return strings.Split(a.FullName, AccountNameSeparator)
}

// Parent returns the full name of the parent account, or "" for a root account.
func (a *Account) Parent() string {
	i := strings.LastIndex(a.FullName, AccountNameSeparator)
	if i < 0 {
		return ""
	}
	return a.FullName[:i]
}

// IsDescendantOf reports whether a sits below ancestor in the hierarchy.
func (a *Account) IsDescendantOf(ancestor string) bool {
	return strings.HasPrefix(a.FullName, ancestor+AccountNameSeparator)
}
