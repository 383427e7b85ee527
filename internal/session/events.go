package session

import (
	"github.com/scaredginger/secret-hitler/internal/wire"
	"github.com/scaredginger/secret-hitler/pkg/hitler"
)

// This file implements hitler.EventListener: the engine's only way of
// talking back to the coordinator. Every method runs with c.mu already
// held — the engine mutator that triggered it was itself called from
// inside HandleFrame or maybeStartLocked.

func (c *Coordinator) OnRolesAssigned(hitlerID int, fascistBitmap uint16, n int) {
	for i := 0; i < n; i++ {
		cl := c.clients[i]
		if cl == nil {
			continue
		}
		switch {
		case i == hitlerID:
			c.safeSendLocked(cl, hitlerTeamFrame(hitlerID, fascistBitmap, n))
		case fascistBitmap&(1<<uint(i)) != 0:
			c.safeSendLocked(cl, wire.TeamFascist(hitlerID, fascistBitmap))
		default:
			c.safeSendLocked(cl, wire.TeamLiberal())
		}
	}
}

// hitlerTeamFrame: in 5-6 player games Hitler learns their one fascist
// teammate; in 7-10 player games the team is large enough that Hitler
// stays blind to it.
func hitlerTeamFrame(hitlerID int, fascistBitmap uint16, n int) []byte {
	if n > 6 {
		return wire.TeamHitlerBlind()
	}
	for j := 0; j < n; j++ {
		if j != hitlerID && fascistBitmap&(1<<uint(j)) != 0 {
			return wire.TeamHitlerKnown(j)
		}
	}
	return wire.TeamHitlerBlind()
}

func (c *Coordinator) OnNominationPhase(presidentID int, eligibleBitmap uint16) {
	c.broadcastLocked(wire.RequestChancellorNomination(presidentID, eligibleBitmap))
}

func (c *Coordinator) OnChancellorNominated(candidateID int) {
	c.broadcastLocked(wire.AnnounceElection(candidateID))
}

func (c *Coordinator) OnVoteReceived(playerID int) {
	c.broadcastLocked(wire.VoteReceived(playerID))
}

func (c *Coordinator) OnElectionResult(success bool, jaBitmap uint16, presidentID, chancellorID int) {
	c.logger.Info().
		Bool("success", success).
		Int("presidentId", presidentID).
		Int("chancellorId", chancellorID).
		Msg("election tallied")
	c.broadcastLocked(wire.Ballot(success, jaBitmap))
}

func (c *Coordinator) OnPolicyDrawn(first, second, third hitler.Team) {
	president := c.engine.PresidentID
	for i := 0; i < c.engine.N(); i++ {
		cl := c.clients[i]
		if cl == nil {
			continue
		}
		if i == president {
			c.safeSendLocked(cl, wire.RequestPresidentPolicyChoice(first, second, third))
		} else {
			c.safeSendLocked(cl, wire.RequestPresidentPolicyChoiceBlank())
		}
	}
}

func (c *Coordinator) OnChancellorChoice(first, second hitler.Team, canVeto bool) {
	chancellor := c.engine.ChancellorID
	for i := 0; i < c.engine.N(); i++ {
		cl := c.clients[i]
		if cl == nil {
			continue
		}
		if i == chancellor {
			c.safeSendLocked(cl, wire.RequestChancellorPolicyChoice(first, second, canVeto))
		} else {
			c.safeSendLocked(cl, wire.RequestChancellorPolicyChoiceBlank())
		}
	}
}

func (c *Coordinator) OnPolicyEnacted(team hitler.Team, chaotic bool, liberalPolicies, fascistPolicies int) {
	var frame []byte
	switch {
	case team == hitler.Fascist && chaotic:
		frame = wire.ChaoticFascistPolicy()
	case team == hitler.Fascist:
		frame = wire.RegularFascistPolicy()
	case chaotic:
		frame = wire.ChaoticLiberalPolicy()
	default:
		frame = wire.RegularLiberalPolicy()
	}
	c.logger.Info().
		Bool("chaotic", chaotic).
		Int("liberalPolicies", liberalPolicies).
		Int("fascistPolicies", fascistPolicies).
		Msg("policy enacted")
	c.broadcastLocked(frame)
}

func (c *Coordinator) OnVetoRequested() {
	c.broadcastLocked(wire.RequestPresidentVeto())
}

// OnVetoResolved has no dedicated wire frame: the wire table defines no
// veto-resolution code, so the outcome is only observable through whatever
// follows — a new nomination request (accepted) or a re-sent
// chancellor-policy-choice with canVeto=false (rejected).
func (c *Coordinator) OnVetoResolved(accepted bool) {}

func (c *Coordinator) OnInvestigationOffered(presidentID int, eligibleBitmap uint16) {
	c.sendToLocked(presidentID, wire.RequestInvestigation(eligibleBitmap))
}

func (c *Coordinator) OnLoyaltyRevealed(presidentID, targetID int, team hitler.Team) {
	c.broadcastLocked(wire.SendLoyaltyPublic(targetID))
	c.sendToLocked(presidentID, wire.SendLoyaltyPresident(targetID, team))
}

func (c *Coordinator) OnTopCardsPeeked(presidentID int, first, second, third hitler.Team) {
	for i := 0; i < c.engine.N(); i++ {
		cl := c.clients[i]
		if cl == nil {
			continue
		}
		if i == presidentID {
			c.safeSendLocked(cl, wire.TopCardsPresident(first, second, third))
		} else {
			c.safeSendLocked(cl, wire.TopCardsBlank())
		}
	}
}

// OnSpecialElectionOffered carries no eligibility bitmap on the wire (the
// table defines REQUEST_SPECIAL_NOMINATION with no trailing bytes);
// clients already track who is alive from DEATH frames, so the president's
// client computes eligible targets itself.
func (c *Coordinator) OnSpecialElectionOffered(presidentID int, eligibleBitmap uint16) {
	c.sendToLocked(presidentID, wire.RequestSpecialNomination())
}

// OnSpecialPresidentChosen has no dedicated frame: it is immediately
// followed by OnNominationPhase, which broadcasts the new president id.
func (c *Coordinator) OnSpecialPresidentChosen(targetID int) {}

func (c *Coordinator) OnKillOffered(presidentID int, aliveBitmap uint16) {
	c.sendToLocked(presidentID, wire.RequestKill(aliveBitmap))
}

func (c *Coordinator) OnPlayerKilled(targetID int) {
	c.broadcastLocked(wire.Death(targetID))
}

func (c *Coordinator) OnGameOver(result hitler.Phase) {
	c.logger.Info().Int("result", int(result)).Msg("game over")
	switch result {
	case hitler.PhaseLiberalPolicyWin:
		c.broadcastLocked(wire.LiberalPolicyWin())
	case hitler.PhaseLiberalHitlerWin:
		c.broadcastLocked(wire.LiberalHitlerWin())
	case hitler.PhaseFascistPolicyWin:
		c.broadcastLocked(wire.FascistPolicyWin())
	case hitler.PhaseFascistHitlerWin:
		c.broadcastLocked(wire.FascistHitlerWin())
	}
}
