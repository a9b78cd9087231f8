package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"hpblackjack-server/pkg/blackjack"
)

func TestInstance(t *testing.T) {
	config = Config{}
	t.Setenv("HPBJ_CONFIG_FILE", "testdata/config.yaml")
	t.Setenv("HPBJ_JWT_PRIVATE_KEY", "private2.key")

	a := assert.New(t)
	cfg := Instance()
	a.Equal(StoreMemory, cfg.Store)
	a.Equal("public.pem", cfg.JWT.PublicKey)
	a.Equal("private2.key", cfg.JWT.PrivateKey)
	a.Equal("debug", cfg.Log.Level)
	a.Equal(250, cfg.Game.StartingHP)
	a.Equal(blackjack.ShoePolicyContinuous, cfg.Game.ShoePolicy)
	a.Equal(20, cfg.Game.ReshuffleThreshold)

	// values the file leaves out keep their defaults
	a.Equal("./sql", cfg.MigrationsPath)

	// ensure that it's only loaded once
	_ = os.Setenv("HPBJ_JWT_PRIVATE_KEY", "private3.key")
	// ensure we aren't using a pointer
	cfg.JWT.PrivateKey = "bad"
	cfg = Instance()
	a.Equal("private2.key", cfg.JWT.PrivateKey)
}

func TestLoad_missingFile(t *testing.T) {
	t.Setenv("HPBJ_CONFIG_FILE", "testdata/does-not-exist.yaml")
	t.Setenv("HPBJ_GAME_MAX_BET", "50")

	a := assert.New(t)
	a.NoError(Load())

	cfg := Instance()
	a.Equal(StorePostgres, cfg.Store)
	a.Equal(100, cfg.Game.StartingHP)
	a.Equal(50, cfg.Game.MaxBet)
	a.Equal(50, cfg.Rules().MaxBet)
}

func TestLoad_invalid(t *testing.T) {
	t.Setenv("HPBJ_CONFIG_FILE", "testdata/does-not-exist.yaml")

	t.Setenv("HPBJ_STORE", "redis")
	assert.EqualError(t, Load(), "unknown store: redis")

	t.Setenv("HPBJ_STORE", "memory")
	t.Setenv("HPBJ_GAME_SHOE_POLICY", "never")
	assert.EqualError(t, Load(), "unknown shoe policy: never")

	t.Setenv("HPBJ_GAME_SHOE_POLICY", "per-round")
	t.Setenv("HPBJ_GAME_STARTING_HP", "0")
	assert.EqualError(t, Load(), "starting HP must be at least 1")
}

func TestDefaultConfig(t *testing.T) {
	a := assert.New(t)
	cfg := DefaultConfig()
	a.NoError(cfg.Validate())
	a.Equal(blackjack.DefaultRules(), cfg.Rules())
}
