package hitler

import "math/rand"

// Card supply for the whole game: 6 liberal + 11 fascist.
const (
	totalLiberalCards = 6
	totalFascistCards = 11
	totalCards        = totalLiberalCards + totalFascistCards
)

// Deck is the ordered sequence of not-yet-drawn policy cards. Discarded and
// enacted cards are never tracked individually: the remaining supply is
// always recomputed from the enacted counters plus whatever is currently
// in hand, so discards flow back into the next reshuffle for free.
type Deck struct {
	cards []Team
}

func (d *Deck) clone() Deck {
	return Deck{cards: append([]Team(nil), d.cards...)}
}

// drawable reports how many cards remain undrawn.
func (d *Deck) drawable() int {
	return len(d.cards)
}

// reshuffle rebuilds the deck from the remaining supply (cards neither
// enacted nor currently in hand) as a uniform random permutation.
func (d *Deck) reshuffle(rng *rand.Rand, liberalEnacted, fascistEnacted, liberalInHand, fascistInHand int) {
	supplyLiberal := totalLiberalCards - liberalEnacted - liberalInHand
	supplyFascist := totalFascistCards - fascistEnacted - fascistInHand

	cards := make([]Team, 0, supplyLiberal+supplyFascist)
	for i := 0; i < supplyLiberal; i++ {
		cards = append(cards, Liberal)
	}
	for i := 0; i < supplyFascist; i++ {
		cards = append(cards, Fascist)
	}
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	d.cards = cards
}

// drawThree removes and returns the top three cards in order.
func (d *Deck) drawThree() (Team, Team, Team) {
	first, second, third := d.cards[0], d.cards[1], d.cards[2]
	d.cards = d.cards[3:]
	return first, second, third
}

// drawOne removes and returns the top card (used for the chaos draw).
func (d *Deck) drawOne() Team {
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c
}

// peekThree reads the top three cards without consuming them.
func (d *Deck) peekThree() (Team, Team, Team) {
	return d.cards[0], d.cards[1], d.cards[2]
}
