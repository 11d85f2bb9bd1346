package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ConfigFile is the file Load looks for.
const ConfigFile = "broadside.cfg.json"

// SimConfig holds the settings that shape a campaign.
type SimConfig struct {
	Seed        int64   `json:"seed" mapstructure:"seed"`
	TickRate    int     `json:"tickRate" mapstructure:"tickRate"`
	WorldSize   int     `json:"worldSize" mapstructure:"worldSize"`
	Islands     int     `json:"islands" mapstructure:"islands"`
	PlayerShips int     `json:"playerShips" mapstructure:"playerShips"`
	Wood        float64 `json:"wood" mapstructure:"wood"`
	Gold        float64 `json:"gold" mapstructure:"gold"`
	Rum         float64 `json:"rum" mapstructure:"rum"`
	Weather     bool    `json:"weather" mapstructure:"weather"`
	Respawn     bool    `json:"respawn" mapstructure:"respawn"`
}

// SetDefaults registers every default. Load calls it; front-ends that run
// without a config file call it directly.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./broadside-logs")

	viper.SetDefault("sim.seed", 1)
	viper.SetDefault("sim.tickRate", 60)
	viper.SetDefault("sim.worldSize", 5760)
	viper.SetDefault("sim.islands", 40)
	viper.SetDefault("sim.playerShips", 3)
	viper.SetDefault("sim.wood", 50)
	viper.SetDefault("sim.gold", 0)
	viper.SetDefault("sim.rum", 5)
	viper.SetDefault("sim.weather", true)
	viper.SetDefault("sim.respawn", true)

	viper.SetDefault("storage.enabled", false)
	viper.SetDefault("storage.sqlitePath", "file::memory:?cache=shared")

	viper.SetDefault("db.enabled", false)
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "broadside")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "broadside")
	viper.SetDefault("influx.bucket", "fleet_state")
	viper.SetDefault("influx.backupPath", "./broadside-logs/influx_backup.log.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("audio.enabled", true)

	viper.SetDefault("ssh.host", "0.0.0.0")
	viper.SetDefault("ssh.port", "23234")
	viper.SetDefault("ssh.hostKeyPath", ".ssh/broadside_ed25519")
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(ConfigFile)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Sim returns the typed simulation settings. Keys are read one by one so
// defaults fill any the file leaves out.
func Sim() (SimConfig, error) {
	c := SimConfig{
		Seed:        viper.GetInt64("sim.seed"),
		TickRate:    viper.GetInt("sim.tickRate"),
		WorldSize:   viper.GetInt("sim.worldSize"),
		Islands:     viper.GetInt("sim.islands"),
		PlayerShips: viper.GetInt("sim.playerShips"),
		Wood:        viper.GetFloat64("sim.wood"),
		Gold:        viper.GetFloat64("sim.gold"),
		Rum:         viper.GetFloat64("sim.rum"),
		Weather:     viper.GetBool("sim.weather"),
		Respawn:     viper.GetBool("sim.respawn"),
	}
	if c.TickRate <= 0 {
		return SimConfig{}, fmt.Errorf("sim.tickRate must be positive, got %d", c.TickRate)
	}
	if c.WorldSize <= 0 {
		return SimConfig{}, fmt.Errorf("sim.worldSize must be positive, got %d", c.WorldSize)
	}
	return c, nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
