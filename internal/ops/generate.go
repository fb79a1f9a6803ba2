package ops

import (
	"github.com/hpungsan/easypass/internal/config"
	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/errors"
)

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	Length  int    // 0: config default
	Charset string // empty: config default
}

// GenerateOutput contains the result of the Generate operation.
type GenerateOutput struct {
	Password string `json:"password"`
	Length   int    `json:"length"`
}

// Generate returns a random password. Nothing is stored.
func Generate(cfg *config.Config, input GenerateInput) (*GenerateOutput, error) {
	length := input.Length
	charset := input.Charset
	if cfg != nil {
		if length == 0 {
			length = cfg.PasswordLength
		}
		if charset == "" {
			charset = cfg.PasswordCharset
		}
	}

	password, err := credential.GeneratePassword(length, charset)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	return &GenerateOutput{Password: password, Length: len([]rune(password))}, nil
}
