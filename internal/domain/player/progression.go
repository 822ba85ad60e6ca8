package player

//go:generate mockgen -destination=mock/mock_progression.go -package=mockplayer -source=progression.go

// Progression is the collaborator the reward coordinator mutates records
// through. Level-up rules live behind it so the dungeon core never owns them.
type Progression interface {
	// AddXP grants xp and applies any level-ups, reporting whether one happened
	AddXP(record *Record, amount int) bool

	// AddItem grants quantity of an item to the record's inventory
	AddItem(record *Record, itemID string, quantity int)

	// AddCoins grants coins
	AddCoins(record *Record, amount int)
}

// levelProgression is the default Progression using the triangular xp curve
type levelProgression struct{}

// NewProgression creates the default progression collaborator
func NewProgression() Progression {
	return &levelProgression{}
}

// AddXP implements Progression.AddXP
func (p *levelProgression) AddXP(record *Record, amount int) bool {
	if amount <= 0 {
		return false
	}

	record.XP += amount
	leveledUp := false
	for record.XP >= XPForLevel(record.Level+1) {
		record.Level++
		leveledUp = true

		// Level-ups raise the pools and top them off
		record.MaxHP += 10
		record.MaxMana += 5
		record.HP = record.MaxHP
		record.Mana = record.MaxMana
	}

	return leveledUp
}

// AddItem implements Progression.AddItem
func (p *levelProgression) AddItem(record *Record, itemID string, quantity int) {
	if quantity <= 0 {
		return
	}
	if record.Inventory == nil {
		record.Inventory = map[string]int{}
	}
	record.Inventory[itemID] += quantity
}

// AddCoins implements Progression.AddCoins
func (p *levelProgression) AddCoins(record *Record, amount int) {
	if amount <= 0 {
		return
	}
	record.Coins += amount
}
