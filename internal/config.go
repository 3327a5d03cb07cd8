package internal

import (
	"chat-relay/errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config is read from the environment, optionally seeded by a .env file.
type Config struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT,default=12345" validate:"min=0,max=65535"`
	ReceiveDir      string        `env:"RECEIVE_DIR,default=." validate:"required"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	MaxFileSize     int64         `env:"MAX_FILE_SIZE,default=0" validate:"min=0"`
	CensoredWords   string        `env:"CENSORED_WORDS"`
	CensorCharacter string        `env:"CENSOR_CHARACTER,default=*"`
	StatsInterval   time.Duration `env:"STATS_INTERVAL,default=0s" validate:"min=0"`
	DebugPort       int           `env:"DEBUG_PORT,default=0" validate:"min=0,max=65535"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s" validate:"gt=0"`
}

// Validate checks value ranges the environment decoder cannot express.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := CharacterRune(c.CensorCharacter); err != nil {
		return err
	}
	return nil
}

// Address is the listening address of the relay.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Words splits CENSORED_WORDS on commas, dropping blanks.
func (c Config) Words() []string {
	var words []string
	for _, w := range strings.Split(c.CensoredWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf("CENSOR_CHARACTER %q: %w", str, errors.ErrInvalidCensor)
	}
	return r[0], nil
}
