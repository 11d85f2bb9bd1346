package storage

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// Models is every table Setup migrates.
var Models = []interface{}{
	&Battle{},
	&ShipLoss{},
	&Capture{},
}

// Battle is one recorded engagement or campaign run.
type Battle struct {
	ID          uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	StartedAt   time.Time `json:"startedAt"`
	EndedAt     time.Time `json:"endedAt"`
	Scenario    string    `json:"scenario" gorm:"size:64"`
	Seed        int64     `json:"seed"`
	Ticks       int       `json:"ticks"`
	Outcome     string    `json:"outcome" gorm:"size:32"`
	Description string    `json:"description" gorm:"size:128"`
	// Stats holds the named counters, FinalState one row per ship still afloat.
	Stats      datatypes.JSON `json:"stats"`
	FinalState datatypes.JSON `json:"finalState"`
}

// ShipLoss is a ship sunk by gunfire or dragged under.
type ShipLoss struct {
	ID        uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	BattleID  uint       `json:"battleId" gorm:"index:idx_shiploss_battle_id"`
	Battle    Battle     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:BattleID;"`
	Tick      int        `json:"tick"`
	Label     string     `json:"label" gorm:"size:32"`
	Archetype string     `json:"archetype" gorm:"size:16"`
	Side      string     `json:"side" gorm:"size:8"`
	Cause     string     `json:"cause" gorm:"size:16"` // sunk, dragged
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Position  geom.Point `json:"position"` // EPSG:3857
}

// Capture is a ship taken by boarding.
type Capture struct {
	ID        uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	BattleID  uint       `json:"battleId" gorm:"index:idx_capture_battle_id"`
	Battle    Battle     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:BattleID;"`
	Tick      int        `json:"tick"`
	Label     string     `json:"label" gorm:"size:32"`
	Archetype string     `json:"archetype" gorm:"size:16"`
	From      string     `json:"from" gorm:"size:8"`
	To        string     `json:"to" gorm:"size:8"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Position  geom.Point `json:"position"`
}

// ShipState is one element of Battle.FinalState.
type ShipState struct {
	Label     string  `json:"label"`
	Archetype string  `json:"archetype"`
	Side      string  `json:"side"`
	State     string  `json:"state"`
	HP        int     `json:"hp"`
	MaxHP     int     `json:"maxHp"`
	Crew      float64 `json:"crew"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}
