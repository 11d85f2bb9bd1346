package game

// Archetype tags a ship with its behaviour row in behaviorTable.
type Archetype int

const (
	ArchetypeBattle Archetype = iota
	ArchetypeFlagShip
	ArchetypeTrading
	ArchetypeFisher
	ArchetypeGhost
	ArchetypeOctopus
	ArchetypeDragon
	archetypeCount
)

func (a Archetype) String() string {
	switch a {
	case ArchetypeBattle:
		return "battle"
	case ArchetypeFlagShip:
		return "flagship"
	case ArchetypeTrading:
		return "trading"
	case ArchetypeFisher:
		return "fisher"
	case ArchetypeGhost:
		return "ghost"
	case ArchetypeOctopus:
		return "octopus"
	case ArchetypeDragon:
		return "dragon"
	default:
		return "unknown"
	}
}

// StateSet is a bitmask of the combat states an archetype may enter.
type StateSet uint8

func statesOf(states ...CombatState) StateSet {
	var s StateSet
	for _, st := range states {
		s |= 1 << uint(st)
	}
	return s
}

// Has reports whether st is allowed. Idle is always allowed.
func (s StateSet) Has(st CombatState) bool {
	return st == StateIdle || s&(1<<uint(st)) != 0
}

// LootTable holds max-exclusive ranges [lo, hi) and the map-part odds
// (0 = never, 1 = always, n = one in n).
type LootTable struct {
	Wood, Gold, Rum [2]int
	MapPartOdds     int
}

// CombatBehavior is the per-archetype constant row. Everything that differs
// between ship kinds lives here; the state machine itself is shared.
type CombatBehavior struct {
	MaxHP  int
	Attack float64
	Enter  float64
	Repair float64
	Speed  float64
	Crew   float64
	Size   Vec2 // footprint used for the spatial index

	States StateSet

	EngageRadius    float64 // gunnery range
	AttackCooldown  float64 // seconds between shots while Attacking
	DefendCooldown  float64 // seconds between shots while Defending
	FirstVolleyIn   float64 // initial shot delay when a fresh target is taken
	DockRadius      float64
	ChaseDockRadius float64 // docking reach when the target is under way
	MaxTargets      int     // simultaneous gunnery targets per volley
	DropRadius      float64 // targets beyond this are forgotten (0 = never)
	SplashRadius    float64 // area damage around the primary target (0 = none)

	FleeHP              int     // disengage at or below this hp (0 = never)
	KillOnBoard         bool    // winning a boarding sinks the prize instead of taking it
	Boardable           bool    // may be the target of a boarding action
	RegenDelay          float64 // seconds of attacking before hp fully regenerates (0 = never)
	EnterRegenInterval  float64 // seconds between resets of the boarding value (0 = never)
	DirectFlight        bool    // moves straight at its destination, ignoring paths
	SelfDestructIfTaken bool    // sinks itself if it ever changes sides

	Loot LootTable
}

const (
	defaultEngageRadius = 150.0
	defaultDockRadius   = 60.0
	chaseDockRadius     = 70.0
)

var behaviorTable = map[Archetype]CombatBehavior{
	ArchetypeBattle: {
		MaxHP: 100, Attack: 15, Enter: 15, Repair: 5, Speed: 0.23, Crew: 35,
		Size:            V(48, 48),
		States:          statesOf(StateAttacking, StateDefending, StateEntering),
		EngageRadius:    defaultEngageRadius,
		AttackCooldown:  3,
		DefendCooldown:  3,
		DockRadius:      defaultDockRadius,
		ChaseDockRadius: chaseDockRadius,
		MaxTargets:      1,
		Boardable:       true,
		Loot:            LootTable{Wood: [2]int{3, 10}, Gold: [2]int{2, 4}, Rum: [2]int{1, 2}, MapPartOdds: 3},
	},
	ArchetypeFlagShip: {
		MaxHP: 100, Attack: 15, Enter: 15, Repair: 10, Speed: 0.25, Crew: 50,
		Size:            V(56, 56),
		States:          statesOf(StateAttacking, StateDefending, StateEntering),
		EngageRadius:    defaultEngageRadius,
		AttackCooldown:  3,
		DefendCooldown:  3,
		DockRadius:      defaultDockRadius,
		ChaseDockRadius: chaseDockRadius,
		MaxTargets:      1,
		Boardable:       true,
		Loot:            LootTable{Wood: [2]int{3, 10}, Gold: [2]int{2, 4}, Rum: [2]int{1, 2}, MapPartOdds: 3},
	},
	ArchetypeTrading: {
		MaxHP: 80, Attack: 10, Enter: 10, Repair: 0, Speed: 0.15, Crew: 20,
		Size:           V(44, 44),
		States:         statesOf(StateAttacking, StateDefending),
		EngageRadius:   defaultEngageRadius,
		AttackCooldown: 4,
		DefendCooldown: 3,
		MaxTargets:     1,
		FleeHP:         40,
		Boardable:      true,
		Loot:           LootTable{Wood: [2]int{1, 5}, Gold: [2]int{4, 16}, MapPartOdds: 5},
	},
	ArchetypeFisher: {
		MaxHP: 30, Attack: 0, Enter: 10, Repair: 0, Speed: 0.13, Crew: 10,
		Size:      V(28, 28),
		Boardable: true,
		Loot:      LootTable{Wood: [2]int{1, 3}, Gold: [2]int{1, 3}},
	},
	ArchetypeGhost: {
		MaxHP: 180, Attack: 50, Enter: 100, Repair: 0, Speed: 0.275, Crew: 150,
		Size:                V(64, 64),
		States:              statesOf(StateAttacking),
		EngageRadius:        defaultEngageRadius,
		AttackCooldown:      3,
		FirstVolleyIn:       2,
		MaxTargets:          3,
		DropRadius:          400,
		RegenDelay:          60,
		SelfDestructIfTaken: true,
		Boardable:           true,
		Loot:                LootTable{Wood: [2]int{20, 100}, Gold: [2]int{200, 800}, Rum: [2]int{5, 10}},
	},
	ArchetypeOctopus: {
		MaxHP: 200, Attack: 0, Enter: 30, Repair: 0, Speed: 0.35, Crew: 30,
		Size:               V(60, 60),
		States:             statesOf(StateEntering),
		DockRadius:         chaseDockRadius,
		ChaseDockRadius:    chaseDockRadius,
		KillOnBoard:        true,
		EnterRegenInterval: 10,
		Loot:               LootTable{Wood: [2]int{10, 30}, Gold: [2]int{200, 300}, MapPartOdds: 1},
	},
	ArchetypeDragon: {
		MaxHP: 200, Attack: 30, Enter: 0, Repair: 0, Speed: 0.15, Crew: 0,
		Size:           V(72, 72),
		States:         statesOf(StateAttacking),
		EngageRadius:   defaultEngageRadius,
		AttackCooldown: 3,
		MaxTargets:     1,
		SplashRadius:   40,
		DirectFlight:   true,
		Loot:           LootTable{Wood: [2]int{100, 300}, Gold: [2]int{20, 30}, MapPartOdds: 1},
	},
}

// Behavior returns the constant row for a. Unknown archetypes get the battle row.
func (a Archetype) Behavior() CombatBehavior {
	if b, ok := behaviorTable[a]; ok {
		return b
	}
	return behaviorTable[ArchetypeBattle]
}

// CanFight reports whether the archetype has any gunnery state.
func (a Archetype) CanFight() bool {
	b := a.Behavior()
	return b.States.Has(StateAttacking) || b.States.Has(StateDefending)
}

// CanBoard reports whether the archetype can start a boarding action.
func (a Archetype) CanBoard() bool {
	return a.Behavior().States.Has(StateEntering)
}

// IsWarship reports whether the archetype fights as a regular combatant in
// fleets (battle ships and flagships).
func (a Archetype) IsWarship() bool {
	return a == ArchetypeBattle || a == ArchetypeFlagShip
}

// IsMonster reports whether the archetype is one of the sea's hunters.
func (a Archetype) IsMonster() bool {
	return a == ArchetypeGhost || a == ArchetypeOctopus || a == ArchetypeDragon
}
