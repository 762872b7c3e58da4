package picobl

import (
	"time"

	"github.com/rs/zerolog"
)

// Progress - Stav přenosu po odeslání bloku
type Progress struct {
	Sent  int // Celkem odeslaných bajtů dat
	Total int // Délka dat
}

// ProgressCallback se volá po každém bloku, musí se rychle vrátit
type ProgressCallback func(Progress)

// Config - Nastavení uploaderu
type Config struct {
	ChunkSize        int
	Reboot           bool
	RebootDelay      time.Duration
	TriggerDelay     time.Duration
	ProgressCallback ProgressCallback
	Logger           zerolog.Logger
}

func defaultConfig() Config {
	return Config{
		ChunkSize:    DefaultChunkSize,
		RebootDelay:  constRebootDelay,
		TriggerDelay: constTriggerDelay,
		Logger:       zerolog.Nop(),
	}
}

// Option - Volba pro New
type Option func(*Config)

// WithChunkSize - Maximum bajtů v jednom zápisu dat, nekladné hodnoty se ignorují
func WithChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.ChunkSize = size
		}
	}
}

// WithReboot - Před přepnutím do módu aktualizace poslat příkaz "reboot"
func WithReboot(reboot bool) Option {
	return func(c *Config) {
		c.Reboot = reboot
	}
}

// WithRebootDelay - Čas na restart zařízení po "reboot"
func WithRebootDelay(d time.Duration) Option {
	return func(c *Config) {
		c.RebootDelay = d
	}
}

// WithTriggerDelay - Čas, za který bootloader po "u" začne čekat na data
func WithTriggerDelay(d time.Duration) Option {
	return func(c *Config) {
		c.TriggerDelay = d
	}
}

// WithProgressCallback - Hlásit průběh po každém bloku
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger - Logger pro přechody mezi stavy a stavové zprávy
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
