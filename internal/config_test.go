package internal

import (
	"chat-relay/errors"
	"testing"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)

	// Given an empty environment
	var config Config
	err := env.Unmarshal(env.EnvSet{}, &config)
	req.NoError(err)

	// Then the relay listens on 12345 in the working directory
	req.Equal(12345, config.Port)
	req.Equal(":12345", config.Address())
	req.Equal(".", config.ReceiveDir)
	req.Equal("INFO", config.LogLevel)
	req.Equal(int64(0), config.MaxFileSize)
	req.Empty(config.Words())
	req.NoError(config.Validate())
}

func TestConfig_Overrides(t *testing.T) {
	req := require.New(t)

	var config Config
	err := env.Unmarshal(env.EnvSet{
		"HOST":           "127.0.0.1",
		"PORT":           "4000",
		"CENSORED_WORDS": "fool, idiot ,,",
		"MAX_FILE_SIZE":  "1024",
	}, &config)
	req.NoError(err)

	req.Equal("127.0.0.1:4000", config.Address())
	req.Equal([]string{"fool", "idiot"}, config.Words())
	req.Equal(int64(1024), config.MaxFileSize)
	req.NoError(config.Validate())
}

func TestConfig_Invalid(t *testing.T) {
	req := require.New(t)

	var config Config
	err := env.Unmarshal(env.EnvSet{"PORT": "70000"}, &config)
	req.NoError(err)
	req.Error(config.Validate())

	err = env.Unmarshal(env.EnvSet{"CENSOR_CHARACTER": "##"}, &config)
	req.NoError(err)
	config.Port = 12345
	req.ErrorIs(config.Validate(), errors.ErrInvalidCensor)
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("€")
	req.NoError(err)
	req.Equal('€', r)

	_, err = CharacterRune("")
	req.ErrorIs(err, errors.ErrInvalidCensor)
}
