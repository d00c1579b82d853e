package core

// Merge filters incoming to messages whose id is not already present in
// existing, preserving incoming's relative order, and returns exactly that
// appended subset. It is a pure function: neither slice is mutated and the
// result shares no backing array with incoming beyond the message values.
//
// Callers append the returned delta to their history and hand the same delta
// to downstream persistence/notification, so assistant replies from a run
// land as a single atomic batch.
func Merge(existing, incoming []Message) []Message {
	if len(incoming) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, m := range existing {
		seen[m.ID] = struct{}{}
	}
	var appended []Message
	for _, m := range incoming {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		appended = append(appended, m)
	}
	return appended
}
