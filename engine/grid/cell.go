package grid

import "fmt"

// CellType identifies what occupies a grid cell
type CellType uint8

const (
	None CellType = iota
	Empty
	Stone
	Deposit
	Mineral
	Bedrock
	FighterBot
	MinerBot
	MotherShip
)

var cellNames = [...]string{"none", "empty", "stone", "deposit", "mineral", "bedrock", "fighter", "miner", "mothership"}

func (c CellType) String() string {
	if int(c) < len(cellNames) {
		return cellNames[c]
	}
	return "unknown"
}

// ParseCellType maps a name produced by String back to its CellType
func ParseCellType(s string) (CellType, bool) {
	for i, n := range cellNames {
		if n == s {
			return CellType(i), true
		}
	}
	return None, false
}

func (c CellType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *CellType) UnmarshalText(b []byte) error {
	v, ok := ParseCellType(string(b))
	if !ok {
		return fmt.Errorf("unknown cell type %q", b)
	}
	*c = v
	return nil
}

// IsBot reports whether c is one of the bot layers
func (c CellType) IsBot() bool { return c == MinerBot || c == FighterBot }

// MoveClass selects which bot layer blocks a traverser
type MoveClass uint8

const (
	ClassNone MoveClass = iota
	ClassMiner
	ClassFighter
)

func (m MoveClass) String() string {
	switch m {
	case ClassMiner:
		return "miner"
	case ClassFighter:
		return "fighter"
	}
	return "none"
}

// ClassOf returns the movement class of a bot cell type
func ClassOf(c CellType) MoveClass {
	switch c {
	case MinerBot:
		return ClassMiner
	case FighterBot:
		return ClassFighter
	}
	return ClassNone
}

// CellType returns the bot cell type moving with this class
func (m MoveClass) CellType() CellType {
	switch m {
	case ClassMiner:
		return MinerBot
	case ClassFighter:
		return FighterBot
	}
	return None
}
