package hitler

// EventListener is notified of every observable transition the engine
// makes. A coordinator implements this to fan messages out to clients
// exactly once per transition — the engine never sends anything itself
// and never suspends mid-mutator, so no event is ever duplicated or lost.
type EventListener interface {
	// OnRolesAssigned fires once, from Init, before Start. It carries
	// everything a coordinator needs to build the three team-reveal frame
	// shapes without re-deriving role logic itself.
	OnRolesAssigned(hitlerID int, fascistBitmap uint16, n int)

	// OnNominationPhase fires whenever the engine enters
	// AWAITING_CHANCELLOR_NOMINATION: on game start, after a rotate, and
	// after a special-president choice. eligibleBitmap marks candidates
	// nominateChancellor will currently accept.
	OnNominationPhase(presidentID int, eligibleBitmap uint16)

	// OnChancellorNominated fires on a valid nomination; the election is
	// now VOTING with every alive player's ballot reset.
	OnChancellorNominated(candidateID int)

	// OnVoteReceived fires once per accepted ballot, before the tally.
	OnVoteReceived(playerID int)

	// OnElectionResult fires once all alive players have voted. jaBitmap
	// marks who voted JA.
	OnElectionResult(success bool, jaBitmap uint16, presidentID, chancellorID int)

	// OnPolicyDrawn fires on a successful election, once three cards are in
	// the president's hand.
	OnPolicyDrawn(first, second, third Team)

	// OnChancellorChoice fires once the president has discarded, leaving
	// two cards for the chancellor, and again (with canVeto=false) after a
	// veto is rejected.
	OnChancellorChoice(first, second Team, canVeto bool)

	// OnPolicyEnacted fires on every enactment, chaotic or not.
	OnPolicyEnacted(team Team, chaotic bool, liberalPolicies, fascistPolicies int)

	// OnVetoRequested fires when the chancellor requests a veto.
	OnVetoRequested()

	// OnVetoResolved fires once the president accepts or rejects.
	OnVetoResolved(accepted bool)

	// OnInvestigationOffered fires when the investigate power is dispatched.
	OnInvestigationOffered(presidentID int, eligibleBitmap uint16)

	// OnLoyaltyRevealed fires once the president investigates a target.
	OnLoyaltyRevealed(presidentID, targetID int, team Team)

	// OnTopCardsPeeked fires when the peek power is dispatched; it is not
	// gated behind a player action.
	OnTopCardsPeeked(presidentID int, first, second, third Team)

	// OnSpecialElectionOffered fires when the special-election power is
	// dispatched.
	OnSpecialElectionOffered(presidentID int, eligibleBitmap uint16)

	// OnSpecialPresidentChosen fires once the president names a successor.
	OnSpecialPresidentChosen(targetID int)

	// OnKillOffered fires when the execute power is dispatched.
	OnKillOffered(presidentID int, aliveBitmap uint16)

	// OnPlayerKilled fires once a kill takes effect (not on a no-op repeat
	// kill of an already-dead player).
	OnPlayerKilled(targetID int)

	// OnGameOver fires exactly once, when the engine reaches any terminal
	// Phase.
	OnGameOver(result Phase)
}
