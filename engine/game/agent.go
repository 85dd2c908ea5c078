package game

import (
	"errors"

	"github.com/1siamBot/hivebattle/engine/core"
	"github.com/1siamBot/hivebattle/engine/grid"
)

const (
	DamageAmount        = 10
	ShootingRange       = 2.85
	HitChance           = 0.75
	BotMaxHealth        = 100
	HealAmount          = 5
	MaxPickedUpMinerals = 3
	MotherShipMaxHealth = 1000
)

var ErrCarryFull = errors.New("bot cannot carry more minerals")

// Agent is anything on the map that has health and belongs to a player
type Agent struct {
	ID        core.EntityID
	PlayerID  int
	Kind      grid.CellType
	Pos       grid.Pos
	Health    int
	MaxHealth int
	destroyed bool
}

// Damage lowers health and reports whether this hit destroyed the agent
func (a *Agent) Damage(n int) bool {
	if a.destroyed {
		return false
	}
	a.Health -= n
	if a.Health <= 0 {
		a.Health = 0
		a.destroyed = true
		return true
	}
	return false
}

func (a *Agent) IsDestroyed() bool { return a.destroyed }

// HealthPercent returns health as a percentage of the maximum
func (a *Agent) HealthPercent() int {
	if a.MaxHealth <= 0 {
		return 0
	}
	return a.Health * 100 / a.MaxHealth
}

// MotherShip builds bots and stores minerals. Losing it loses the game.
type MotherShip struct {
	Agent
}

func NewMotherShip(playerID int, pos grid.Pos, maxHealth int) *MotherShip {
	return &MotherShip{Agent{
		ID:        core.NewEntityID(),
		PlayerID:  playerID,
		Kind:      grid.MotherShip,
		Pos:       pos,
		Health:    maxHealth,
		MaxHealth: maxHealth,
	}}
}

// Bot is a miner or a fighter
type Bot struct {
	Agent
	BuildNumber      int
	PickedUpMinerals int
	maxCarry         int
	healAmount       int
}

func NewBot(playerID, buildNumber int, kind grid.CellType, pos grid.Pos, rules Rules) *Bot {
	return &Bot{
		Agent: Agent{
			ID:        core.NewEntityID(),
			PlayerID:  playerID,
			Kind:      kind,
			Pos:       pos,
			Health:    rules.BotMaxHealth,
			MaxHealth: rules.BotMaxHealth,
		},
		BuildNumber: buildNumber,
		maxCarry:    rules.MaxPickedUpMinerals,
		healAmount:  rules.HealAmount,
	}
}

// Class returns the movement class used for pathfinding
func (b *Bot) Class() grid.MoveClass { return grid.ClassOf(b.Kind) }

func (b *Bot) Heal() {
	b.Health = min(b.Health+b.healAmount, b.MaxHealth)
}

func (b *Bot) CanPickUpMinerals() bool { return b.PickedUpMinerals < b.maxCarry }

func (b *Bot) AddMineral() error {
	if !b.CanPickUpMinerals() {
		return ErrCarryFull
	}
	b.PickedUpMinerals++
	return nil
}

// RemovePickedUpMinerals empties the cargo and returns how much was carried
func (b *Bot) RemovePickedUpMinerals() int {
	n := b.PickedUpMinerals
	b.PickedUpMinerals = 0
	return n
}
