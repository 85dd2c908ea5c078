package game

import (
	"fmt"
	"slices"
	"sync"
)

// HiveMind decides every move of one player
type HiveMind interface {
	MotherShipAI(obs *MotherShipObservation) MotherShipMove
	FighterAI(obs *BotObservation) FighterMove
	MinerAI(obs *BotObservation) MinerMove
}

// Factory creates a fresh hive mind for one player
type Factory func() HiveMind

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a hive mind available by name. Registering a name twice panics.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("game: hive mind registered twice: " + name)
	}
	registry[name] = f
}

// NewHiveMind creates the hive mind registered under name
func NewHiveMind(name string) (HiveMind, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown hive mind %q (have %v)", name, HiveMinds())
	}
	return f(), nil
}

// HiveMinds lists the registered names, sorted
func HiveMinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func init() {
	Register("empty", func() HiveMind { return Empty{} })
	Register("minersonly", func() HiveMind { return MinersOnly{} })
	Register("demo", func() HiveMind { return Demo{} })
	Register("mastermind", func() HiveMind { return NewMasterMind() })
}

// Empty never does anything
type Empty struct{}

func (Empty) MotherShipAI(*MotherShipObservation) MotherShipMove { return MotherShipMove{} }
func (Empty) FighterAI(*BotObservation) FighterMove             { return FighterIdle(FighterDoNothing) }
func (Empty) MinerAI(*BotObservation) MinerMove                 { return MinerIdle(MinerDoNothing) }
