package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 5, cfg.Ledger.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Ledger.TxTimeout)
	assert.Equal(t, IsolationSerializable, cfg.Ledger.WriteIsolation)
	assert.Equal(t, 30, cfg.Ledger.ExpiringDefaultDays)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_LeeVariablesDeTexto(t *testing.T) {
	v := viper.New()
	v.Set("DB_DRIVER", "SQLite")
	v.Set("LEDGER_MAX_RETRIES", "3")
	v.Set("LEDGER_TX_TIMEOUT_MS", "250")
	v.Set("LEDGER_WRITE_ISOLATION", "read_committed")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, 3, cfg.Ledger.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Ledger.TxTimeout)
	assert.Equal(t, IsolationReadCommitted, cfg.Ledger.WriteIsolation)
}

func TestFromViper_RechazaAislamientoDesconocido(t *testing.T) {
	v := viper.New()
	v.Set("LEDGER_WRITE_ISOLATION", "chaos")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_RechazaReintentosFueraDeRango(t *testing.T) {
	v := viper.New()
	v.Set("LEDGER_MAX_RETRIES", 100)

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/ledger?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
