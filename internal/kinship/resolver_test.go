package kinship

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMapIsSymmetric(t *testing.T) {
	rels := BuildMap([]Connection{
		{SenderID: 1, ReceiverID: 2, Role: Son},
		{SenderID: 1, ReceiverID: 3, Role: Role("Nephew")},
	})

	r, ok := rels.Lookup(1, 2)
	require.True(t, ok)
	assert.Equal(t, Son, r)

	r, ok = rels.Lookup(2, 1)
	require.True(t, ok)
	assert.Equal(t, Parent, r)

	r, ok = rels.Lookup(3, 1)
	require.True(t, ok)
	assert.Equal(t, FamilyMember, r)

	_, ok = rels.Lookup(2, 3)
	assert.False(t, ok)
	assert.Len(t, rels.views[1], 2)
	assert.Len(t, rels.views, 3)
}

func TestBuildMapLastWriteWins(t *testing.T) {
	rels := BuildMap([]Connection{
		{SenderID: 1, ReceiverID: 2, Role: Son},
		{SenderID: 1, ReceiverID: 2, Role: Brother},
	})

	r, _ := rels.Lookup(1, 2)
	assert.Equal(t, Brother, r)
	r, _ = rels.Lookup(2, 1)
	assert.Equal(t, Sibling, r)
}

func TestBuildMapIsDeterministic(t *testing.T) {
	conns := []Connection{
		{SenderID: 1, ReceiverID: 2, Role: Father},
		{SenderID: 2, ReceiverID: 3, Role: Spouse},
		{SenderID: 3, ReceiverID: 4, Role: Daughter},
	}
	assert.Equal(t, BuildMap(conns), BuildMap(conns))
	assert.NotEqual(t, BuildMap(conns), BuildMap(conns[:2]))
}

func TestResolveSelf(t *testing.T) {
	resolver := NewResolver(BuildMap(nil))
	for _, id := range []int64{1, 42} {
		assert.Equal(t, Self, resolver.Resolve(id, id))
	}

	// Self wins even when a connection points back at the viewer
	resolver = NewResolver(BuildMap([]Connection{{SenderID: 5, ReceiverID: 5, Role: Son}}))
	assert.Equal(t, Self, resolver.Resolve(5, 5))
}

func TestResolveDirectAndInverse(t *testing.T) {
	tests := []struct {
		role    Role
		forward Role
		back    Role
	}{
		{Son, Son, Parent},
		{Mother, Mother, Child},
		{Spouse, Spouse, Spouse},
		{Sister, Sister, Sibling},
		{Guardian, Guardian, Ward},
		{Role("Uncle"), Role("Uncle"), FamilyMember},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			resolver := NewResolver(BuildMap([]Connection{{SenderID: 1, ReceiverID: 2, Role: tt.role}}))
			assert.Equal(t, tt.forward, resolver.Resolve(1, 2))
			assert.Equal(t, tt.back, resolver.Resolve(2, 1))
		})
	}
}

func TestResolveUnconnectedIsFamilyMember(t *testing.T) {
	resolver := NewResolver(BuildMap([]Connection{{SenderID: 1, ReceiverID: 2, Role: Son}}))
	assert.Equal(t, FamilyMember, resolver.Resolve(1, 9))
	assert.Equal(t, FamilyMember, resolver.Resolve(9, 1))
}

func TestInferSiblingsThroughSharedChild(t *testing.T) {
	// 1 -> 3 and 2 -> 3 both fold to Child
	resolver := NewResolver(BuildMap([]Connection{
		{SenderID: 1, ReceiverID: 3, Role: Son},
		{SenderID: 2, ReceiverID: 3, Role: Son},
	}))

	assert.Equal(t, Sibling, resolver.Resolve(1, 2))
	assert.Equal(t, Sibling, resolver.Resolve(2, 1))
}

func TestInferSharedParentFallsBack(t *testing.T) {
	// Pivot 3 calls both 1 and 2 "Child". Child has no inverse entry, so
	// neither 1 nor 2 has a category for the pivot.
	conns := []Connection{
		{SenderID: 3, ReceiverID: 1, Role: Child},
		{SenderID: 3, ReceiverID: 2, Role: Child},
	}
	resolver := NewResolver(BuildMap(conns))

	assert.Equal(t, FamilyMember, resolver.Resolve(1, 2))
	assert.Equal(t, FamilyMember, resolver.Resolve(2, 1))

	// The pivot still sees both directly
	assert.Equal(t, Child, resolver.Resolve(3, 1))
	assert.Equal(t, Child, resolver.Resolve(3, 2))
}

func TestInferStepParentThroughSpouse(t *testing.T) {
	// 1 -> 3 folds to Parent, 2 -> 3 is Spouse
	resolver := NewResolver(BuildMap([]Connection{
		{SenderID: 1, ReceiverID: 3, Role: Father},
		{SenderID: 3, ReceiverID: 2, Role: Spouse},
	}))

	assert.Equal(t, Parent, resolver.Resolve(1, 2))
	// 2 -> 3 Spouse, 1 -> 3 Parent: (Spouse, Parent) -> Parent
	assert.Equal(t, Parent, resolver.Resolve(2, 1))
}

func TestInferUsesLowestPivotFirst(t *testing.T) {
	// Pivot 10: 1 -> 10 Spouse, 2 -> 10 Child  => Child
	// Pivot 20: 1 -> 20 Child,  2 -> 20 Child  => Sibling
	conns := []Connection{
		{SenderID: 1, ReceiverID: 20, Role: Son},
		{SenderID: 2, ReceiverID: 20, Role: Daughter},
		{SenderID: 1, ReceiverID: 10, Role: Spouse},
		{SenderID: 2, ReceiverID: 10, Role: Son},
	}
	resolver := NewResolver(BuildMap(conns))

	assert.Equal(t, Child, resolver.Infer(1, 2))
}

func TestInferSkipsGenericPivots(t *testing.T) {
	// Pivot 5 yields nothing (Guardian has no category); pivot 7 yields Sibling
	conns := []Connection{
		{SenderID: 1, ReceiverID: 5, Role: Guardian},
		{SenderID: 2, ReceiverID: 5, Role: Guardian},
		{SenderID: 1, ReceiverID: 7, Role: Son},
		{SenderID: 2, ReceiverID: 7, Role: Son},
	}
	resolver := NewResolver(BuildMap(conns))

	assert.Equal(t, Sibling, resolver.Infer(1, 2))
}

func TestDirectGenericRoleFallsThroughToInference(t *testing.T) {
	conns := []Connection{
		// 2 calls 1 "Neighbour": 1 -> 2 is generic
		{SenderID: 2, ReceiverID: 1, Role: Role("Neighbour")},
		{SenderID: 1, ReceiverID: 3, Role: Son},
		{SenderID: 2, ReceiverID: 3, Role: Son},
	}
	resolver := NewResolver(BuildMap(conns))

	assert.Equal(t, Sibling, resolver.Resolve(1, 2))
	// The direct opaque role is shown to its sender
	assert.Equal(t, Role("Neighbour"), resolver.Resolve(2, 1))
}

func TestResolveMemberAppliesGender(t *testing.T) {
	resolver := NewResolver(BuildMap([]Connection{
		{SenderID: 1, ReceiverID: 3, Role: Father},
		{SenderID: 3, ReceiverID: 2, Role: Spouse},
	}))

	assert.Equal(t, Mother, resolver.ResolveMember(1, Member{ID: 2, Gender: "female"}))
	assert.Equal(t, Parent, resolver.ResolveMember(1, Member{ID: 2}))
	assert.Equal(t, Self, resolver.ResolveMember(1, Member{ID: 1, Gender: "male"}))
}

func TestResolveFamily(t *testing.T) {
	members := []Member{
		{ID: 2, Gender: "male"},
		{ID: 1, Gender: "female"},
		{ID: 3, Gender: "female"},
		{ID: 4},
	}
	conns := []Connection{
		{SenderID: 1, ReceiverID: 2, Role: Spouse},
		{SenderID: 1, ReceiverID: 3, Role: Daughter},
	}

	roles := ResolveFamily(1, members, conns)

	assert.Equal(t, []Role{Spouse, Self, Daughter, FamilyMember}, roles)

	// From the daughter's side: 3 -> 1 Parent (Mother), 3 -> 2 via pivot 1:
	// (Parent, Spouse) -> Parent, male -> Father
	assert.Equal(t, []Role{Father, Mother, Self, FamilyMember}, ResolveFamily(3, members, conns))
}

func TestResolverIsSafeForConcurrentUse(t *testing.T) {
	resolver := NewResolver(BuildMap([]Connection{
		{SenderID: 1, ReceiverID: 3, Role: Son},
		{SenderID: 2, ReceiverID: 3, Role: Son},
	}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, Sibling, resolver.Resolve(1, 2))
		}()
	}
	wg.Wait()
}
