package kinship

// Member is the part of a user profile the resolver needs
type Member struct {
	ID     int64
	Gender string
}

// Resolver names family members from one viewer's point of view
type Resolver struct {
	rels *RelationshipMap
}

// NewResolver creates a resolver over a relationship map
func NewResolver(rels *RelationshipMap) *Resolver {
	return &Resolver{rels: rels}
}

// Resolve returns the gender-neutral role viewer uses for subject.
// A direct, specific role wins; otherwise one pivot is tried; otherwise
// the subject is a FamilyMember.
func (r *Resolver) Resolve(viewer, subject int64) Role {
	if viewer == subject {
		return Self
	}
	if direct, ok := r.rels.Lookup(viewer, subject); ok && !direct.IsGeneric() {
		return direct
	}
	if inferred := r.Infer(viewer, subject); !inferred.IsGeneric() {
		return inferred
	}
	return FamilyMember
}

// Infer looks for a user both viewer and subject are connected to and
// combines the two roles they use for that pivot. Pivots are tried in
// ascending id order and the first specific inference is returned.
func (r *Resolver) Infer(viewer, subject int64) Role {
	for _, pivot := range r.rels.pivots(viewer, subject) {
		viewerToPivot, _ := r.rels.Lookup(viewer, pivot)
		subjectToPivot, _ := r.rels.Lookup(subject, pivot)
		if inferred := Combine(viewerToPivot, subjectToPivot); !inferred.IsGeneric() {
			return inferred
		}
	}
	return FamilyMember
}

// ResolveMember resolves subject's role and applies their gender
func (r *Resolver) ResolveMember(viewer int64, subject Member) Role {
	return AdjustForGender(r.Resolve(viewer, subject.ID), subject.Gender)
}

// ResolveFamily resolves every member relative to viewer. The result is
// aligned with members.
func ResolveFamily(viewer int64, members []Member, conns []Connection) []Role {
	resolver := NewResolver(BuildMap(conns))
	roles := make([]Role, len(members))
	for i, m := range members {
		roles[i] = resolver.ResolveMember(viewer, m)
	}
	return roles
}
