package kinship

// The tables below are read-only after package initialization.

// inverses maps a role to the role used in the opposite direction
var inverses = map[Role]Role{
	Father:   Child,
	Mother:   Child,
	Son:      Parent,
	Daughter: Parent,
	Spouse:   Spouse,
	Brother:  Sibling,
	Sister:   Sibling,
	Guardian: Ward,
	Ward:     Guardian,
}

// categories folds gendered roles for the combination lookup only
var categories = map[Role]Role{
	Father:   Parent,
	Mother:   Parent,
	Parent:   Parent,
	Son:      Child,
	Daughter: Child,
	Child:    Child,
	Brother:  Sibling,
	Sister:   Sibling,
	Sibling:  Sibling,
	Spouse:   Spouse,
}

type rolePair struct {
	aToPivot Role
	bToPivot Role
}

// combinations is deliberately approximate: a spouse's parent folds to
// Parent rather than an in-law role.
var combinations = map[rolePair]Role{
	{Parent, Spouse}:  Parent,
	{Parent, Child}:   Sibling,
	{Child, Child}:    Sibling,
	{Child, Spouse}:   Parent,
	{Sibling, Parent}: Parent,
	{Sibling, Child}:  Sibling,
	{Spouse, Child}:   Child,
	{Spouse, Parent}:  Parent,
}

type genderPair struct {
	male   Role
	female Role
}

var genderedForms = map[Role]genderPair{
	Parent:  {male: Father, female: Mother},
	Child:   {male: Son, female: Daughter},
	Sibling: {male: Brother, female: Sister},
}
