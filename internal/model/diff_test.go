package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func persistedCustomer() *Customer {
	return &Customer{
		ID:   "a7e191e5-6e72-4c35-8b4e-dcc52808e43b",
		Name: "John Doe",
		Emails: []Email{
			{ID: "e-1", Address: "john@gmail.com", Primary: true},
			{ID: "e-2", Address: "jane@gmail.com", Primary: false},
		},
		Phones: []Phone{
			{ID: "p-1", Number: "123456789", Primary: true},
			{ID: "p-2", Number: "987654321", Primary: false},
		},
		Addresses: []Address{
			{ID: "a-1", Line: "123, Main Street", City: "New York", State: "New York", Country: "USA", Pincode: "10001"},
			{ID: "a-2", Line: "456, Main Street", City: "Los Angeles", State: "California", Country: "USA", Pincode: "90001"},
		},
	}
}

func TestDiffChildrenReplacesEmailSet(t *testing.T) {
	existing := persistedCustomer()
	desired := &Customer{
		Name:   "John Doe",
		Emails: []Email{{Address: "john.updated@gmail.com", Primary: true}},
		Phones: []Phone{
			{Number: "123456789", Primary: true},
			{Number: "987654321", Primary: false},
		},
		Addresses: existing.Addresses,
	}

	diff := desired.DiffChildren(existing)

	require.Len(t, diff.Emails.Insert, 1, "the new address must be inserted")
	require.Len(t, diff.Emails.Delete, 2, "both old addresses must be removed")
	require.Empty(t, diff.Emails.Update)

	require.Len(t, diff.Phones.Update, 2, "re-supplied phones are matched by number")
	require.Empty(t, diff.Phones.Insert)
	require.Empty(t, diff.Phones.Delete)

	existing.ApplyDiff(diff)
	require.Len(t, existing.Emails, 1)
	require.Equal(t, "john.updated@gmail.com", existing.Emails[0].Address)
}

func TestDiffChildrenKeepsIdentityOnUpdate(t *testing.T) {
	existing := persistedCustomer()
	desired := &Customer{
		Name:   "John Doe",
		Emails: []Email{{Address: "john@gmail.com", Primary: false}},
	}

	diff := desired.DiffChildren(existing)

	require.Len(t, diff.Emails.Update, 1)
	require.Equal(t, "e-1", diff.Emails.Update[0].ID, "matched record must keep its persisted id")
	require.Equal(t, "john@gmail.com", diff.Emails.Update[0].Address, "identity field must stay unchanged")
	require.False(t, diff.Emails.Update[0].Primary, "mutable flag must come from the desired entry")
}

func TestDiffChildrenAddressMutableFields(t *testing.T) {
	existing := persistedCustomer()
	desired := &Customer{
		Name: "John Doe",
		Addresses: []Address{
			{Line: "123, Main Street", City: "New York", State: "NY", Country: "United States", Pincode: "10001"},
		},
	}

	diff := desired.DiffChildren(existing)

	require.Len(t, diff.Addresses.Update, 1, "same line/city/pincode must match the persisted address")
	updated := diff.Addresses.Update[0]
	require.Equal(t, "a-1", updated.ID)
	require.Equal(t, "NY", updated.State)
	require.Equal(t, "United States", updated.Country)
	require.Len(t, diff.Addresses.Delete, 1, "the other address was not re-supplied")
}

func TestDiffChildrenOmittedListsDeleteAll(t *testing.T) {
	existing := persistedCustomer()
	desired := &Customer{Name: "John Doe"}

	diff := desired.DiffChildren(existing)
	existing.ApplyDiff(diff)

	require.Empty(t, existing.Emails)
	require.Empty(t, existing.Phones)
	require.Empty(t, existing.Addresses)
}

func TestDiffChildrenDuplicateKeyCollapse(t *testing.T) {
	existing := persistedCustomer()
	desired := &Customer{
		Name: "John Doe",
		Emails: []Email{
			{Address: "john@gmail.com", Primary: true},
			{Address: "john@gmail.com", Primary: false},
		},
	}

	diff := desired.DiffChildren(existing)

	require.Len(t, diff.Emails.Update, 1)
	require.False(t, diff.Emails.Update[0].Primary, "the later duplicate entry must win")
}

func TestApplyDiffIdempotence(t *testing.T) {
	desired := &Customer{
		Name:   "John Doe",
		Emails: []Email{{Address: "john.updated@gmail.com", Primary: true}},
		Phones: []Phone{{Number: "123456789", Primary: false}},
		Addresses: []Address{
			{Line: "123, Main Street", City: "New York", State: "NY", Country: "USA", Pincode: "10001"},
		},
	}

	existing := persistedCustomer()
	existing.ApplyDiff(desired.DiffChildren(existing))

	once := *existing
	secondDiff := desired.DiffChildren(existing)
	require.Empty(t, secondDiff.Emails.Insert)
	require.Empty(t, secondDiff.Emails.Delete)
	require.Empty(t, secondDiff.Phones.Insert)
	require.Empty(t, secondDiff.Phones.Delete)
	require.Empty(t, secondDiff.Addresses.Insert)
	require.Empty(t, secondDiff.Addresses.Delete)

	existing.ApplyDiff(secondDiff)
	require.Equal(t, once.Emails, existing.Emails)
	require.Equal(t, once.Phones, existing.Phones)
	require.Equal(t, once.Addresses, existing.Addresses)
}
