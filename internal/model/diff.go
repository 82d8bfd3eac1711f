package model

import (
	"customer-registry/internal/reconcile"
)

// CustomerDiff groups the reconciliation action sets for the three
// child collections of one customer.
type CustomerDiff struct {
	Emails    reconcile.Actions[Email]
	Phones    reconcile.Actions[Phone]
	Addresses reconcile.Actions[Address]
}

// IsNoop reports whether the diff changes nothing.
func (d *CustomerDiff) IsNoop() bool {
	return d.Emails.IsNoop() && d.Phones.IsNoop() && d.Addresses.IsNoop()
}

// DiffChildren diffs the desired child collections of c against the
// persisted collections of existing. Matched records keep identity and
// take only their mutable attributes from the desired entry.
func (c *Customer) DiffChildren(existing *Customer) CustomerDiff {
	return CustomerDiff{
		Emails:    reconcile.Diff(c.Emails, existing.Emails, Email.Key, mergeEmail),
		Phones:    reconcile.Diff(c.Phones, existing.Phones, Phone.Key, mergePhone),
		Addresses: reconcile.Diff(c.Addresses, existing.Addresses, Address.Key, mergeAddress),
	}
}

// ApplyDiff folds the action sets into the child collections of c.
func (c *Customer) ApplyDiff(d CustomerDiff) {
	c.Emails = reconcile.Apply(c.Emails, d.Emails, Email.Key)
	c.Phones = reconcile.Apply(c.Phones, d.Phones, Phone.Key)
	c.Addresses = reconcile.Apply(c.Addresses, d.Addresses, Address.Key)
}

func mergeEmail(current, want Email) Email {
	current.Primary = want.Primary
	return current
}

func mergePhone(current, want Phone) Phone {
	current.Primary = want.Primary
	return current
}

func mergeAddress(current, want Address) Address {
	current.State = want.State
	current.Country = want.Country
	return current
}
