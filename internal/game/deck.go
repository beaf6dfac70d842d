package game

// devDeckComposition is the canonical 25-card development deck
var devDeckComposition = []struct {
	cardType DevCardType
	count    int
}{
	{CardKnight, 14},
	{CardVictoryPoint, 5},
	{CardRoadBuilding, 2},
	{CardYearOfPlenty, 2},
	{CardMonopoly, 2},
}

// DevDeckSize is the total number of development cards
const DevDeckSize = 25

// newDevDeck builds and shuffles the development deck. Draws take from the
// end of the slice; the order is never observable to players.
func newDevDeck(rng RNG) []DevCardType {
	deck := make([]DevCardType, 0, DevDeckSize)
	for _, entry := range devDeckComposition {
		for i := 0; i < entry.count; i++ {
			deck = append(deck, entry.cardType)
		}
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// drawDevCard removes and returns the top card of the deck
func (g *Game) drawDevCard() (DevCardType, bool) {
	if len(g.DevDeck) == 0 {
		return "", false
	}
	card := g.DevDeck[len(g.DevDeck)-1]
	g.DevDeck = g.DevDeck[:len(g.DevDeck)-1]
	return card, true
}
