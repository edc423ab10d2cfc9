// Package kinship infers how members of a family group are related to
// each other from the role-labelled connections they accepted.
//
// The lookup tables are fixed at init and every function derives its
// result from its arguments alone. A RelationshipMap is immutable once
// built and safe for concurrent use.
package kinship

import "strings"

// Role is a relationship label, as a viewer names a subject.
//
// The declared constants form the closed set the lookup tables know
// about. Labels outside that set (for example "Uncle") survive as opaque
// roles: they are shown as-is when stored directly on a connection, and
// every table treats them as FamilyMember.
type Role string

const (
	Father   Role = "Father"
	Mother   Role = "Mother"
	Son      Role = "Son"
	Daughter Role = "Daughter"
	Spouse   Role = "Spouse"
	Brother  Role = "Brother"
	Sister   Role = "Sister"
	Guardian Role = "Guardian"
	Ward     Role = "Ward"

	// Gender-neutral categories
	Parent  Role = "Parent"
	Child   Role = "Child"
	Sibling Role = "Sibling"

	Self         Role = "Self"
	FamilyMember Role = "Family Member"
)

// knownRoles indexes the closed set by lowercase name
var knownRoles = func() map[string]Role {
	all := []Role{
		Father, Mother, Son, Daughter, Spouse, Brother, Sister, Guardian, Ward,
		Parent, Child, Sibling, Self, FamilyMember,
	}
	m := make(map[string]Role, len(all))
	for _, r := range all {
		m[strings.ToLower(string(r))] = r
	}
	return m
}()

// ParseRole turns a stored label into a Role. Known labels match
// case-insensitively and come back in canonical form; an empty label is
// FamilyMember; anything else is kept verbatim as an opaque role.
func ParseRole(label string) Role {
	label = strings.TrimSpace(label)
	if label == "" {
		return FamilyMember
	}
	if r, ok := knownRoles[strings.ToLower(label)]; ok {
		return r
	}
	return Role(label)
}

// String returns the display label
func (r Role) String() string {
	return string(r)
}

// Known reports whether r belongs to the closed set of roles
func (r Role) Known() bool {
	canonical, ok := knownRoles[strings.ToLower(string(r))]
	return ok && canonical == r
}

// IsGeneric reports whether r is the FamilyMember fallback
func (r Role) IsGeneric() bool {
	return r == FamilyMember
}

// Category folds r into Parent, Child, Sibling or Spouse. The second
// result is false for roles outside those four families.
func (r Role) Category() (Role, bool) {
	c, ok := categories[r]
	return c, ok
}

// Inverse returns the role the subject uses for the viewer when the
// viewer uses r for the subject. Roles missing from the inverse table
// invert to FamilyMember.
func Inverse(r Role) Role {
	if inv, ok := inverses[r]; ok {
		return inv
	}
	return FamilyMember
}

// Combine infers A's role for B from A's role for a pivot P and B's
// role for the same pivot. Unlisted combinations yield FamilyMember.
func Combine(aToPivot, bToPivot Role) Role {
	a, okA := aToPivot.Category()
	b, okB := bToPivot.Category()
	if !okA || !okB {
		return FamilyMember
	}
	if inferred, ok := combinations[rolePair{a, b}]; ok {
		return inferred
	}
	return FamilyMember
}

// AdjustForGender picks the gendered form of Parent, Child and Sibling.
// Every other role, and any gender other than male or female, passes
// through unchanged.
func AdjustForGender(r Role, gender string) Role {
	forms, ok := genderedForms[r]
	if !ok {
		return r
	}
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "male":
		return forms.male
	case "female":
		return forms.female
	default:
		return r
	}
}
