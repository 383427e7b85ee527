package hitler

import "math/rand"

// Engine is the Secret Hitler rules engine for one room. It is parameterized
// only by player count (5..10) and performs no I/O: every mutator runs to
// completion, including all emitted listener callbacks, before returning.
//
// The input trust model is deliberate: mutators enforce only the rule-level
// guards (chancellor eligibility, vote validity, veto precondition,
// investigate/kill/special-president target aliveness). Gating a mutator
// call to the *current* Phase is the caller's job — see
// internal/session.Coordinator.
type Engine struct {
	State
	rng      *rand.Rand
	listener EventListener
}

// NewEngine creates an Engine for n players (5..10). The engine is inert
// until Init assigns roles and Start begins the first nomination.
func NewEngine(n int, listener EventListener) *Engine {
	return &Engine{
		State:    State{Players: make([]Player, n)},
		listener: listener,
	}
}

// Init seeds the engine's RNG, assigns roles, deals the first president,
// and loads a full shuffled deck. It does not transition the Phase past
// PhaseNotStarted — the coordinator still has team-reveal messages to send
// before calling Start.
func (e *Engine) Init(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
	n := e.N()

	players := make([]Player, n)
	for i := range players {
		players[i].Alive = true
	}
	e.Players = players

	hitlerID, fascistFlags := assignRoles(e.rng, n)
	e.HitlerID = hitlerID
	var fascistBitmap uint16
	for i, isFascist := range fascistFlags {
		if isFascist {
			e.Players[i].Team = Fascist
			fascistBitmap |= 1 << uint(i)
		} else {
			e.Players[i].Team = Liberal
		}
	}

	e.PresidentCounter = e.rng.Intn(n)
	e.PresidentID = e.PresidentCounter
	e.ChancellorID = NoPlayer
	e.PreviousPresidentID = NoPlayer
	e.PreviousChancellorID = NoPlayer
	e.LiberalPolicies = 0
	e.FascistPolicies = 0
	e.ElectionTracker = 0
	e.SpecialElection = false
	e.Phase = PhaseNotStarted

	e.deck = Deck{}
	e.maybeReshuffle(0, 0)

	e.listener.OnRolesAssigned(hitlerID, fascistBitmap, n)
}

// Start moves the engine into the first AWAITING_CHANCELLOR_NOMINATION.
func (e *Engine) Start() {
	e.Phase = PhaseAwaitingChancellorNomination
	e.listener.OnNominationPhase(e.PresidentID, e.nominationEligibleBitmap())
}

// eligibleChancellor reports whether candidateID may currently be
// nominated: alive, not the president, not the immediately previous
// chancellor, and, if they were the immediately previous president, only
// eligible again once 5 or fewer players remain alive.
func (e *Engine) eligibleChancellor(candidateID int) bool {
	if candidateID < 0 || candidateID >= e.N() {
		return false
	}
	if !e.Players[candidateID].Alive {
		return false
	}
	if candidateID == e.PresidentID {
		return false
	}
	if candidateID == e.PreviousChancellorID {
		return false
	}
	if candidateID == e.PreviousPresidentID && e.AliveCount() > 5 {
		return false
	}
	return true
}

func (e *Engine) nominationEligibleBitmap() uint16 {
	return e.eligibilityBitmap(e.eligibleChancellor)
}

// NominateChancellor advances VOTING on a valid candidate; invalid
// candidates are silently ignored (returns false).
func (e *Engine) NominateChancellor(candidateID int) bool {
	if !e.eligibleChancellor(candidateID) {
		return false
	}
	e.ChancellorID = candidateID
	for i := range e.Players {
		e.Players[i].Voted = false
	}
	e.Phase = PhaseVoting
	e.listener.OnChancellorNominated(candidateID)
	return true
}

// AddVote records one ballot. Dead players, repeat voters, and ABSTAIN
// ballots are silently ignored. Once every alive player has voted, the
// election is tallied and the engine advances.
func (e *Engine) AddVote(playerID int, v Vote) bool {
	if playerID < 0 || playerID >= e.N() {
		return false
	}
	p := &e.Players[playerID]
	if !p.Alive || p.Voted || v == Abstain {
		return false
	}
	p.Voted = true
	p.LastVote = v
	e.listener.OnVoteReceived(playerID)

	for i := range e.Players {
		if e.Players[i].Alive && !e.Players[i].Voted {
			return true
		}
	}
	e.tally()
	return true
}

func (e *Engine) tally() {
	ja, nein := 0, 0
	var jaBitmap uint16
	for i := range e.Players {
		if !e.Players[i].Alive {
			continue
		}
		if e.Players[i].LastVote == Ja {
			ja++
			jaBitmap |= 1 << uint(i)
		} else {
			nein++
		}
	}
	success := ja > nein
	e.listener.OnElectionResult(success, jaBitmap, e.PresidentID, e.ChancellorID)

	if !success {
		e.ElectionTracker++
		if e.ElectionTracker >= 3 {
			e.triggerChaos()
		} else {
			e.rotate()
		}
		return
	}

	if e.FascistPolicies >= 3 && e.ChancellorID == e.HitlerID {
		e.setTerminal(PhaseFascistHitlerWin)
		return
	}

	e.PreviousPresidentID = e.PresidentID
	e.PreviousChancellorID = e.ChancellorID
	e.ElectionTracker = 0

	e.maybeReshuffle(0, 0)
	first, second, third := e.deck.drawThree()
	e.FirstPolicy, e.SecondPolicy, e.ThirdPolicy = first, second, third
	e.Phase = PhaseAwaitingPresidentPolicy
	e.listener.OnPolicyDrawn(first, second, third)
}

// triggerChaos enacts the automatic chaotic policy after a third
// consecutive failed election: no power triggers and term-limit memory is
// cleared.
func (e *Engine) triggerChaos() {
	e.maybeReshuffle(0, 0)
	card := e.deck.drawOne()
	if card == Liberal {
		e.LiberalPolicies++
	} else {
		e.FascistPolicies++
	}
	e.PreviousPresidentID = NoPlayer
	e.PreviousChancellorID = NoPlayer
	e.ElectionTracker = 0
	e.listener.OnPolicyEnacted(card, true, e.LiberalPolicies, e.FascistPolicies)

	if e.checkWin() {
		return
	}
	e.maybeReshuffle(0, 0)
	e.rotate()
}

// ChoosePresidentPolicy discards the named card. The choice names the card
// to discard; the remaining two cards become (first, second) in their
// original relative order.
func (e *Engine) ChoosePresidentPolicy(choice PolicyChoice) bool {
	switch choice {
	case First:
		e.FirstPolicy, e.SecondPolicy = e.SecondPolicy, e.ThirdPolicy
	case Second:
		e.SecondPolicy = e.ThirdPolicy
	case Third:
		// discarding the third card leaves (first, second) unchanged
	default:
		return false
	}
	e.Phase = PhaseAwaitingChancellorPolicy
	e.listener.OnChancellorChoice(e.FirstPolicy, e.SecondPolicy, e.FascistPolicies == 5)
	return true
}

// EnactChancellorPolicy enacts FIRST or SECOND. Win conditions are checked
// immediately; a fascist enactment (non-chaotic) dispatches a presidential
// power, a liberal enactment rotates the presidency.
func (e *Engine) EnactChancellorPolicy(choice PolicyChoice) bool {
	var team Team
	switch choice {
	case First:
		team = e.FirstPolicy
	case Second:
		team = e.SecondPolicy
	default:
		return false
	}

	if team == Liberal {
		e.LiberalPolicies++
	} else {
		e.FascistPolicies++
	}
	e.ElectionTracker = 0
	e.listener.OnPolicyEnacted(team, false, e.LiberalPolicies, e.FascistPolicies)

	if e.checkWin() {
		return true
	}
	e.maybeReshuffle(0, 0)

	if team == Fascist {
		e.dispatchPower()
	} else {
		e.rotate()
	}
	return true
}

// RequestVeto is only accepted in AWAITING_CHANCELLOR_POLICY with
// fascistPolicies == 5.
func (e *Engine) RequestVeto() bool {
	if e.Phase != PhaseAwaitingChancellorPolicy || e.FascistPolicies != 5 {
		return false
	}
	e.Phase = PhaseAwaitingVeto
	e.listener.OnVetoRequested()
	return true
}

// ResolveVeto is the president's accept/reject response to a veto request.
func (e *Engine) ResolveVeto(accept bool) bool {
	if e.Phase != PhaseAwaitingVeto {
		return false
	}
	e.listener.OnVetoResolved(accept)

	if accept {
		e.ElectionTracker++
		if e.ElectionTracker >= 3 {
			e.triggerChaos()
		} else {
			e.rotate()
		}
		return true
	}

	e.Phase = PhaseAwaitingChancellorPolicyNoVeto
	e.listener.OnChancellorChoice(e.FirstPolicy, e.SecondPolicy, false)
	return true
}

func (e *Engine) investigateEligibleBitmap() uint16 {
	return e.eligibilityBitmap(func(i int) bool {
		return e.Players[i].Alive && !e.Players[i].Investigated && i != e.PresidentID
	})
}

func (e *Engine) specialElectionEligibleBitmap() uint16 {
	return e.eligibilityBitmap(func(i int) bool {
		return e.Players[i].Alive && i != e.PresidentID
	})
}

// RevealLoyalty is the president's investigate choice; valid only against a
// living, not-yet-investigated, non-president target.
func (e *Engine) RevealLoyalty(targetID int) bool {
	if targetID < 0 || targetID >= e.N() {
		return false
	}
	p := &e.Players[targetID]
	if !p.Alive || p.Investigated || targetID == e.PresidentID {
		return false
	}
	p.Investigated = true
	e.listener.OnLoyaltyRevealed(e.PresidentID, targetID, p.Team)
	e.rotate()
	return true
}

// UseSpecialPresident names the next president directly; the normal
// rotation resumes from presidentCounter afterward.
func (e *Engine) UseSpecialPresident(targetID int) bool {
	if targetID < 0 || targetID >= e.N() {
		return false
	}
	if !e.Players[targetID].Alive || targetID == e.PresidentID {
		return false
	}
	e.PresidentID = targetID
	e.SpecialElection = true
	e.listener.OnSpecialPresidentChosen(targetID)
	e.Phase = PhaseAwaitingChancellorNomination
	e.listener.OnNominationPhase(e.PresidentID, e.nominationEligibleBitmap())
	return true
}

// KillPlayer executes a target. Re-executing an already-dead player is a
// silent no-op.
func (e *Engine) KillPlayer(targetID int) bool {
	if targetID < 0 || targetID >= e.N() {
		return false
	}
	if !e.Players[targetID].Alive {
		return true
	}
	e.Players[targetID].Alive = false
	e.listener.OnPlayerKilled(targetID)
	if targetID == e.HitlerID {
		e.setTerminal(PhaseLiberalHitlerWin)
		return true
	}
	e.rotate()
	return true
}

func (e *Engine) checkWin() bool {
	switch {
	case e.LiberalPolicies >= 5:
		e.setTerminal(PhaseLiberalPolicyWin)
		return true
	case e.FascistPolicies >= 6:
		e.setTerminal(PhaseFascistPolicyWin)
		return true
	default:
		return false
	}
}

func (e *Engine) setTerminal(phase Phase) {
	e.Phase = phase
	e.listener.OnGameOver(phase)
}

// dispatchPower fires immediately after a non-chaotic fascist enactment.
func (e *Engine) dispatchPower() {
	switch powerFor(e.FascistPolicies, e.N()) {
	case PowerNone:
		e.rotate()
	case PowerPeek:
		first, second, third := e.deck.peekThree()
		e.listener.OnTopCardsPeeked(e.PresidentID, first, second, third)
		e.rotate()
	case PowerInvestigate:
		e.Phase = PhaseAwaitingAllegiancePeekChoice
		e.listener.OnInvestigationOffered(e.PresidentID, e.investigateEligibleBitmap())
	case PowerSpecialElection:
		e.Phase = PhaseAwaitingSpecialPresidentChoice
		e.listener.OnSpecialElectionOffered(e.PresidentID, e.specialElectionEligibleBitmap())
	case PowerExecute:
		e.Phase = PhaseAwaitingKillChoice
		e.listener.OnKillOffered(e.PresidentID, e.AliveBitmap())
	}
}

// rotate advances the presidency and re-enters nomination. If a special
// president just served, the single skipped advance lets presidentCounter
// resume the normal rotation exactly where it left off. The dead-player
// skip runs either way: the seat at presidentCounter may have been
// executed during the special president's term.
func (e *Engine) rotate() {
	n := e.N()
	if e.SpecialElection {
		e.SpecialElection = false
	} else {
		e.PresidentCounter = (e.PresidentCounter + 1) % n
	}
	for i := 0; i < n && !e.Players[e.PresidentCounter].Alive; i++ {
		e.PresidentCounter = (e.PresidentCounter + 1) % n
	}
	e.PresidentID = e.PresidentCounter
	e.ChancellorID = NoPlayer
	e.Phase = PhaseAwaitingChancellorNomination
	e.listener.OnNominationPhase(e.PresidentID, e.nominationEligibleBitmap())
}

// maybeReshuffle reshuffles the deck whenever fewer than 3 cards remain
// drawable, accounting for cards currently in a hand (not yet enacted or
// discarded into the supply).
func (e *Engine) maybeReshuffle(inHandLiberal, inHandFascist int) {
	if e.deck.drawable() < 3 {
		e.deck.reshuffle(e.rng, e.LiberalPolicies, e.FascistPolicies, inHandLiberal, inHandFascist)
	}
}
