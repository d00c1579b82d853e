package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(id string, role Role) Message {
	return Message{ID: id, Role: role, Content: []Part{TextPart{Text: id}}}
}

func TestMerge_AppendsOnlyUnknownIDs(t *testing.T) {
	existing := []Message{msg("u1", RoleUser), msg("a1", RoleAssistant)}
	incoming := []Message{msg("a1", RoleAssistant), msg("a2", RoleAssistant), msg("a3", RoleAssistant)}

	appended := Merge(existing, incoming)

	require.Len(t, appended, 2)
	assert.Equal(t, "a2", appended[0].ID)
	assert.Equal(t, "a3", appended[1].ID)
}

func TestMerge_PreservesIncomingOrder(t *testing.T) {
	incoming := []Message{msg("c", RoleAssistant), msg("a", RoleAssistant), msg("b", RoleAssistant)}

	appended := Merge(nil, incoming)

	require.Len(t, appended, 3)
	assert.Equal(t, "c", appended[0].ID)
	assert.Equal(t, "a", appended[1].ID)
	assert.Equal(t, "b", appended[2].ID)
}

func TestMerge_DropsDuplicatesWithinIncoming(t *testing.T) {
	incoming := []Message{msg("a1", RoleAssistant), msg("a1", RoleAssistant)}

	appended := Merge(nil, incoming)

	require.Len(t, appended, 1)
}

func TestMerge_EmptyIncoming(t *testing.T) {
	existing := []Message{msg("u1", RoleUser)}

	assert.Nil(t, Merge(existing, nil))
	assert.Nil(t, Merge(existing, []Message{}))
}

func TestMerge_DoesNotMutateArguments(t *testing.T) {
	existing := []Message{msg("u1", RoleUser)}
	incoming := []Message{msg("u1", RoleUser), msg("a1", RoleAssistant)}

	_ = Merge(existing, incoming)

	require.Len(t, existing, 1)
	require.Len(t, incoming, 2)
	assert.Equal(t, "u1", incoming[0].ID)
}

func TestMerge_NeverProducesDuplicateIDs(t *testing.T) {
	existing := []Message{msg("a", RoleUser), msg("b", RoleAssistant)}
	incoming := []Message{msg("b", RoleAssistant), msg("c", RoleAssistant), msg("c", RoleAssistant), msg("a", RoleUser)}

	result := append(existing, Merge(existing, incoming)...)

	seen := map[string]int{}
	for _, m := range result {
		seen[m.ID]++
	}
	for id, n := range seen {
		assert.Equalf(t, 1, n, "id %s appears %d times", id, n)
	}
}
