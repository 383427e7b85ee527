package hitler

// PowerKind names a one-shot presidential power, or the absence of one.
type PowerKind int8

const (
	PowerNone PowerKind = iota
	PowerInvestigate
	PowerPeek
	PowerSpecialElection
	PowerExecute
)

// powerFor returns the power dispatched immediately after a fascist
// enactment that brings the board to fascistPolicies, for a table of n
// players. fascistPolicies == 6 is handled as a win before this is
// consulted (see Engine.EnactChancellorPolicy), so it never appears here.
func powerFor(fascistPolicies, n int) PowerKind {
	switch {
	case n <= 6:
		switch fascistPolicies {
		case 3:
			return PowerPeek
		case 4, 5:
			return PowerExecute
		default:
			return PowerNone
		}
	case n <= 8:
		switch fascistPolicies {
		case 2:
			return PowerInvestigate
		case 3:
			return PowerSpecialElection
		case 4, 5:
			return PowerExecute
		default:
			return PowerNone
		}
	default:
		switch fascistPolicies {
		case 1, 2:
			return PowerInvestigate
		case 3:
			return PowerSpecialElection
		case 4, 5:
			return PowerExecute
		default:
			return PowerNone
		}
	}
}
