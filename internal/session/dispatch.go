package session

import "github.com/scaredginger/secret-hitler/pkg/hitler"

// Targeted-action dispatch. Each of these enforces three gates: the
// expected game state is current, the sender is the player allowed to act,
// and the target index is in range. Any gate failing drops the frame
// silently — no response, no state change.

func (c *Coordinator) dispatchSelectChancellor(clientID, candidate int) {
	if c.engine == nil || c.engine.Phase != hitler.PhaseAwaitingChancellorNomination {
		return
	}
	if clientID != c.engine.PresidentID {
		return
	}
	if candidate < 0 || candidate >= c.engine.N() {
		return
	}
	c.engine.NominateChancellor(candidate)
}

// dispatchEliminatePolicy handles mod-8 action 1, which the president and
// chancellor reuse for different purposes depending on the current phase:
// the president discards one of three cards; the chancellor enacts one of
// two, or — reusing the unused third value, since the chancellor never
// holds a third card — requests a veto.
func (c *Coordinator) dispatchEliminatePolicy(clientID, arg int) {
	if c.engine == nil {
		return
	}
	switch c.engine.Phase {
	case hitler.PhaseAwaitingPresidentPolicy:
		if clientID != c.engine.PresidentID || arg < 0 || arg > 2 {
			return
		}
		c.engine.ChoosePresidentPolicy(hitler.PolicyChoice(arg))

	case hitler.PhaseAwaitingChancellorPolicy:
		if clientID != c.engine.ChancellorID {
			return
		}
		switch arg {
		case 0, 1:
			c.engine.EnactChancellorPolicy(hitler.PolicyChoice(arg))
		case 2:
			c.engine.RequestVeto()
		}

	case hitler.PhaseAwaitingChancellorPolicyNoVeto:
		if clientID != c.engine.ChancellorID {
			return
		}
		if arg == 0 || arg == 1 {
			c.engine.EnactChancellorPolicy(hitler.PolicyChoice(arg))
		}
	}
}

func (c *Coordinator) dispatchReveal(clientID, target int) {
	if c.engine == nil || c.engine.Phase != hitler.PhaseAwaitingAllegiancePeekChoice {
		return
	}
	if clientID != c.engine.PresidentID || target < 0 || target >= c.engine.N() {
		return
	}
	c.engine.RevealLoyalty(target)
}

func (c *Coordinator) dispatchKill(clientID, target int) {
	if c.engine == nil || c.engine.Phase != hitler.PhaseAwaitingKillChoice {
		return
	}
	if clientID != c.engine.PresidentID || target < 0 || target >= c.engine.N() {
		return
	}
	c.engine.KillPlayer(target)
}

func (c *Coordinator) dispatchSelectSpecialPresident(clientID, target int) {
	if c.engine == nil || c.engine.Phase != hitler.PhaseAwaitingSpecialPresidentChoice {
		return
	}
	if clientID != c.engine.PresidentID || target < 0 || target >= c.engine.N() {
		return
	}
	c.engine.UseSpecialPresident(target)
}

func (c *Coordinator) dispatchVote(clientID int, v hitler.Vote) {
	if c.engine == nil || c.engine.Phase != hitler.PhaseVoting {
		return
	}
	if clientID < 0 || clientID >= c.engine.N() {
		return
	}
	c.engine.AddVote(clientID, v)
}

func (c *Coordinator) dispatchVetoResponse(clientID int, accept bool) {
	if c.engine == nil || c.engine.Phase != hitler.PhaseAwaitingVeto {
		return
	}
	if clientID != c.engine.PresidentID {
		return
	}
	c.engine.ResolveVeto(accept)
}
