// Package storage records battles, losses and captures in a SQL database.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Garsondee/Broadside/internal/game"
	"github.com/Garsondee/Broadside/internal/geo"
	"github.com/glebarez/sqlite"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryDSN is the shared in-memory SQLite database.
const MemoryDSN = "file::memory:?cache=shared"

var (
	ErrNotConnected   = errors.New("storage not connected")
	ErrNoActiveBattle = errors.New("no battle in progress")
)

// Store handles the database connection and buffers events of the
// running battle until EndBattle writes them.
type Store struct {
	DB              *gorm.DB
	SqlDB           *sql.DB
	IsValid         bool
	ShouldSaveLocal bool
	Logger          zerolog.Logger

	chart   geo.Chart
	ctx     *game.SimulationContext
	battle  *Battle
	losses  []ShipLoss
	capture []Capture
}

// NewStore creates a store that places positions on chart.
func NewStore(log zerolog.Logger, chart geo.Chart) *Store {
	return &Store{Logger: log, chart: chart}
}

// Connect opens Postgres when db.enabled is set, falling back to SQLite at
// storage.sqlitePath when that fails or is disabled.
func (s *Store) Connect() error {
	var err error
	if viper.GetBool("db.enabled") {
		s.DB, err = s.GetPostgresDB()
		if err == nil {
			s.SqlDB, err = s.DB.DB()
		}
		if err == nil {
			err = s.SqlDB.Ping()
		}
		if err == nil {
			s.Logger.Info().Msg("Connected to database")
			s.SqlDB.SetMaxOpenConns(10)
			s.IsValid = true
			return nil
		}
		s.Logger.Error().Err(err).Msg("Failed to connect to Postgres DB, trying SQLite")
	}

	s.ShouldSaveLocal = true
	s.DB, err = s.GetSqliteDB(viper.GetString("storage.sqlitePath"))
	if err != nil || s.DB == nil {
		s.IsValid = false
		return fmt.Errorf("failed to get local SQLite DB: %w", err)
	}
	s.SqlDB, err = s.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	// One connection keeps a shared in-memory database alive and serialises writers.
	s.SqlDB.SetMaxOpenConns(1)
	s.IsValid = true
	return nil
}

// GetPostgresDB returns a connection to the Postgres database.
func (s *Store) GetPostgresDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"),
	)
	s.Logger.Debug().Str("host", viper.GetString("db.host")).Msg("Connecting to Postgres DB")

	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        1000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// GetSqliteDB returns a connection to a SQLite database. An empty path
// uses MemoryDSN.
func (s *Store) GetSqliteDB(path string) (*gorm.DB, error) {
	if path == "" {
		path = MemoryDSN
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info().Str("path", path).Msg("Using local SQLite DB")

	pragmas := []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}
	return db, nil
}

// Setup migrates every table.
func (s *Store) Setup() error {
	if s.DB == nil {
		return ErrNotConnected
	}
	if err := s.DB.AutoMigrate(Models...); err != nil {
		s.IsValid = false
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	s.Logger.Info().Msg("Database setup complete")
	return nil
}

// BeginBattle opens a battle row and starts buffering events from ctx.
func (s *Store) BeginBattle(ctx *game.SimulationContext, scenario string, seed int64) (*Battle, error) {
	if !s.IsValid {
		return nil, ErrNotConnected
	}
	b := &Battle{StartedAt: time.Now().UTC(), Scenario: scenario, Seed: seed}
	if err := s.DB.Create(b).Error; err != nil {
		return nil, fmt.Errorf("create battle: %w", err)
	}
	s.ctx = ctx
	s.battle = b
	s.losses = s.losses[:0]
	s.capture = s.capture[:0]
	return b, nil
}

// OnEvent buffers losses and captures of the running battle. Every loss is
// taken from the sinking itself, so a ship counts once however it went down.
func (s *Store) OnEvent(e game.Event) {
	if s.battle == nil {
		return
	}
	switch e.Kind {
	case game.EventSunk:
		// Detail names the cause when it was not gunfire, e.g. "dragged".
		cause := e.Detail
		if cause == "" {
			cause = "sunk"
		}
		s.losses = append(s.losses, s.loss(e.Tick, s.label(e.Ship), e.Archetype, e.Side, cause, e.Pos))
	case game.EventCaptured:
		c := Capture{
			BattleID:  s.battle.ID,
			Tick:      e.Tick,
			Label:     s.label(e.Ship),
			Archetype: e.Archetype.String(),
			From:      e.Side.Opponent().String(),
			To:        e.Side.String(),
			X:         e.Pos.X,
			Y:         e.Pos.Y,
		}
		c.Position = s.position(e.Pos)
		s.capture = append(s.capture, c)
	}
}

func (s *Store) loss(tick int, label string, arch game.Archetype, side game.Side, cause string, pos game.Vec2) ShipLoss {
	return ShipLoss{
		BattleID:  s.battle.ID,
		Tick:      tick,
		Label:     label,
		Archetype: arch.String(),
		Side:      side.String(),
		Cause:     cause,
		X:         pos.X,
		Y:         pos.Y,
		Position:  s.position(pos),
	}
}

func (s *Store) position(p game.Vec2) geom.Point {
	pt, err := s.chart.Point(p.X, p.Y)
	if err != nil {
		s.Logger.Trace().Err(err).Msg("event off chart")
	}
	return pt
}

func (s *Store) ship(id game.ShipID) *game.Ship {
	if s.ctx == nil {
		return nil
	}
	return s.ctx.Ship(id)
}

func (s *Store) label(id game.ShipID) string {
	if sh := s.ship(id); sh != nil {
		return sh.Label
	}
	return fmt.Sprintf("#%d", id)
}

// EndBattle writes the buffered rows and closes the battle with its
// outcome, counters and the final state of every ship still afloat.
func (s *Store) EndBattle(outcome game.EngagementOutcomeReason) error {
	if s.battle == nil {
		return ErrNoActiveBattle
	}
	b := s.battle
	defer func() { s.battle = nil }()

	b.EndedAt = time.Now().UTC()
	b.Outcome = outcome.Outcome.String()
	b.Description = outcome.Description
	if s.ctx != nil {
		b.Ticks = s.ctx.Tick
		stats, err := json.Marshal(s.ctx.Stats.Snapshot())
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		b.Stats = datatypes.JSON(stats)
		final, err := json.Marshal(finalState(s.ctx))
		if err != nil {
			return fmt.Errorf("marshal final state: %w", err)
		}
		b.FinalState = datatypes.JSON(final)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if len(s.losses) > 0 {
			if err := tx.Create(&s.losses).Error; err != nil {
				return fmt.Errorf("write losses: %w", err)
			}
		}
		if len(s.capture) > 0 {
			if err := tx.Create(&s.capture).Error; err != nil {
				return fmt.Errorf("write captures: %w", err)
			}
		}
		if err := tx.Save(b).Error; err != nil {
			return fmt.Errorf("close battle: %w", err)
		}
		s.Logger.Info().Uint("battle", b.ID).Str("outcome", b.Outcome).
			Int("losses", len(s.losses)).Int("captures", len(s.capture)).Msg("battle recorded")
		return nil
	})
}

func finalState(ctx *game.SimulationContext) []ShipState {
	out := make([]ShipState, 0, len(ctx.Ships))
	for _, sh := range ctx.Ships {
		if !sh.Alive() {
			continue
		}
		out = append(out, ShipState{
			Label:     sh.Label,
			Archetype: sh.Archetype.String(),
			Side:      sh.Side.String(),
			State:     sh.State.String(),
			HP:        sh.HP,
			MaxHP:     sh.MaxHP,
			Crew:      sh.Crew,
			X:         sh.Pos.X,
			Y:         sh.Pos.Y,
		})
	}
	return out
}

// Losses returns the recorded losses of a battle in tick order.
func (s *Store) Losses(battleID uint) ([]ShipLoss, error) {
	if s.DB == nil {
		return nil, ErrNotConnected
	}
	var out []ShipLoss
	err := s.DB.Where("battle_id = ?", battleID).Order("tick, id").Find(&out).Error
	return out, err
}

// Captures returns the recorded captures of a battle in tick order.
func (s *Store) Captures(battleID uint) ([]Capture, error) {
	if s.DB == nil {
		return nil, ErrNotConnected
	}
	var out []Capture
	err := s.DB.Where("battle_id = ?", battleID).Order("tick, id").Find(&out).Error
	return out, err
}

// Battles returns every battle, newest first.
func (s *Store) Battles() ([]Battle, error) {
	if s.DB == nil {
		return nil, ErrNotConnected
	}
	var out []Battle
	err := s.DB.Order("id desc").Find(&out).Error
	return out, err
}

// Close releases the connection.
func (s *Store) Close() error {
	if s.SqlDB == nil {
		return nil
	}
	s.IsValid = false
	return s.SqlDB.Close()
}
