package kinship

import "sort"

// Connection is an accepted edge: the sender uses Role for the receiver
type Connection struct {
	SenderID   int64
	ReceiverID int64
	Role       Role
}

// RelationshipMap records, for every ordered pair of connected users,
// the role the first uses for the second
type RelationshipMap struct {
	views map[int64]map[int64]Role
}

// BuildMap derives a symmetric RelationshipMap from accepted connections.
// Each connection records its role forwards and the inverse backwards.
// When several connections touch the same ordered pair the last one in
// the slice wins.
func BuildMap(conns []Connection) *RelationshipMap {
	m := &RelationshipMap{views: make(map[int64]map[int64]Role)}
	for _, c := range conns {
		m.set(c.SenderID, c.ReceiverID, c.Role)
		m.set(c.ReceiverID, c.SenderID, Inverse(c.Role))
	}
	return m
}

func (m *RelationshipMap) set(viewer, subject int64, r Role) {
	view, ok := m.views[viewer]
	if !ok {
		view = make(map[int64]Role)
		m.views[viewer] = view
	}
	view[subject] = r
}

// Lookup returns the role viewer uses for subject, if they are directly connected
func (m *RelationshipMap) Lookup(viewer, subject int64) (Role, bool) {
	r, ok := m.views[viewer][subject]
	return r, ok
}

// pivots returns the users both a and b are directly connected to, in
// ascending id order
func (m *RelationshipMap) pivots(a, b int64) []int64 {
	viewA, viewB := m.views[a], m.views[b]
	if len(viewB) < len(viewA) {
		viewA, viewB = viewB, viewA
	}

	var common []int64
	for id := range viewA {
		if id == a || id == b {
			continue
		}
		if _, ok := viewB[id]; ok {
			common = append(common, id)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })
	return common
}
