// Package reconcile implements the diff-and-apply kernel used to bring
// a persisted child collection to a desired state supplied in a payload.
package reconcile

// Actions is the outcome of diffing a desired list against an existing
// one: records to insert, records to update in place (identity kept,
// mutable attributes taken from the desired entry) and records to delete.
type Actions[T any] struct {
	Insert []T
	Update []T
	Delete []T
}

// IsNoop reports whether applying the actions would change nothing.
func (a Actions[T]) IsNoop() bool {
	return len(a.Insert) == 0 && len(a.Update) == 0 && len(a.Delete) == 0
}

// Diff computes the action sets turning existing into desired. Records
// are matched by the identity produced by key. If desired contains
// several entries with the same key, the last one wins. For matched
// records merge receives the existing record and the desired one and
// must return the existing record with only its mutable attributes
// overwritten.
func Diff[T any, K comparable](desired, existing []T, key func(T) K, merge func(current, want T) T) Actions[T] {
	var actions Actions[T]

	want := make(map[K]T, len(desired))
	for _, rec := range desired {
		want[key(rec)] = rec
	}

	have := make(map[K]T, len(existing))
	for _, rec := range existing {
		have[key(rec)] = rec
	}

	seen := make(map[K]struct{}, len(desired))
	for _, rec := range desired {
		k := key(rec)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}

		if current, ok := have[k]; ok {
			actions.Update = append(actions.Update, merge(current, want[k]))
		} else {
			actions.Insert = append(actions.Insert, want[k])
		}
	}

	for _, rec := range existing {
		if _, ok := want[key(rec)]; !ok {
			actions.Delete = append(actions.Delete, rec)
		}
	}

	return actions
}

// Apply folds the action sets into existing and returns the post state:
// updates replace their matches, inserts are appended, deletes removed.
// The post state key set equals exactly the desired key set.
func Apply[T any, K comparable](existing []T, actions Actions[T], key func(T) K) []T {
	updated := make(map[K]T, len(actions.Update))
	for _, rec := range actions.Update {
		updated[key(rec)] = rec
	}

	deleted := make(map[K]struct{}, len(actions.Delete))
	for _, rec := range actions.Delete {
		deleted[key(rec)] = struct{}{}
	}

	result := make([]T, 0, len(existing)+len(actions.Insert))
	for _, rec := range existing {
		k := key(rec)
		if _, ok := deleted[k]; ok {
			continue
		}
		if rec, ok := updated[k]; ok {
			result = append(result, rec)
			continue
		}
		result = append(result, rec)
	}

	return append(result, actions.Insert...)
}
