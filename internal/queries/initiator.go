package queries

import (
	"omc/internal/types"
)

// SubjectTypeCitizen is the role subject type of natural persons.
const SubjectTypeCitizen = "natuurlijk_persoon"

// ResolveInitiator returns the citizen behind the single role whose generic
// label equals initiatorRole (exact, case-sensitive). Zero matches yield
// ErrCodeMalformedMissingInitiator and more than one yields
// ErrCodeMalformedAmbiguousInitiator; the result never depends on the order
// of roles.
func ResolveInitiator(roles []types.CaseRole, initiatorRole string) (types.CitizenData, error) {
	var (
		found types.CitizenData
		n     int
	)
	for _, r := range roles {
		if r.GenericRoleLabel != initiatorRole {
			continue
		}
		n++
		found = r.Citizen
	}

	switch n {
	case 0:
		return types.CitizenData{}, types.NewAppErrorWithDetails(
			types.ErrCodeMalformedMissingInitiator,
			"case has no initiator",
			nil,
			map[string]any{"role": initiatorRole, "roles": len(roles)},
		)
	case 1:
		return found, nil
	default:
		return types.CitizenData{}, types.NewAppErrorWithDetails(
			types.ErrCodeMalformedAmbiguousInitiator,
			"case has more than one initiator",
			nil,
			map[string]any{"role": initiatorRole, "matches": n},
		)
	}
}
