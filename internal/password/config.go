package password

import "fmt"

// Algorithm selects the hashing algorithm.
type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

// Config is the hashing configuration loaded from the service config.
type Config struct {
	Algorithm     Algorithm `mapstructure:"algorithm"`
	BcryptCost    int       `mapstructure:"bcrypt_cost"`
	Argon2Time    uint32    `mapstructure:"argon2_time"`
	Argon2Memory  uint32    `mapstructure:"argon2_memory"`
	Argon2Threads uint8     `mapstructure:"argon2_threads"`
}

func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmBcrypt
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
}

func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
		return nil
	}
	return fmt.Errorf("password: unsupported algorithm %q", c.Algorithm)
}

// NewHasher builds a Hasher from configuration.
func NewHasher(cfg Config) Hasher {
	cfg.ApplyDefaults()
	if cfg.Algorithm == AlgorithmArgon2id {
		return NewArgon2Hasher(cfg.Argon2Time, cfg.Argon2Memory, cfg.Argon2Threads)
	}
	return NewBcryptHasher(cfg.BcryptCost)
}
