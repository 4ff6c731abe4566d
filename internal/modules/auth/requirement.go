package auth

import "strconv"

type requirementKind int

const (
	kindAuthenticated requirementKind = iota
	kindOwner
	kindAdmin
)

// Requirement is what an operation demands of the caller. Build one with
// MustBeAuthenticated, MustOwn or MustBeAdmin.
type Requirement struct {
	kind    requirementKind
	ownerID int64
}

func MustBeAuthenticated() Requirement {
	return Requirement{kind: kindAuthenticated}
}

// MustOwn is satisfied by the user with ownerID and by any admin.
func MustOwn(ownerID int64) Requirement {
	return Requirement{kind: kindOwner, ownerID: ownerID}
}

func MustBeAdmin() Requirement {
	return Requirement{kind: kindAdmin}
}

// Name is the metric label of the requirement.
func (r Requirement) Name() string {
	switch r.kind {
	case kindOwner:
		return "must_own"
	case kindAdmin:
		return "must_be_admin"
	default:
		return "must_be_authenticated"
	}
}

func (r Requirement) String() string {
	if r.kind == kindOwner {
		return r.Name() + "(" + strconv.FormatInt(r.ownerID, 10) + ")"
	}
	return r.Name()
}
