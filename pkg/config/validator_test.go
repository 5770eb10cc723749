package config

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedConfig struct {
	Addr    string `validate:"required,hostname_port"`
	Workers int    `validate:"min=1,max=4096"`
	Engine  string `validate:"oneof=gnet net"`
}

func TestValidatorValidate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		cfg     any
		wantErr string
	}{
		{name: "valid", cfg: &validatedConfig{Addr: "0.0.0.0:6969", Workers: 8, Engine: "gnet"}},
		{name: "missing addr", cfg: &validatedConfig{Workers: 8, Engine: "net"}, wantErr: "is required"},
		{name: "bad addr", cfg: &validatedConfig{Addr: "nope", Workers: 8, Engine: "net"}, wantErr: "host:port"},
		{name: "workers too small", cfg: &validatedConfig{Addr: "127.0.0.1:1", Engine: "net"}, wantErr: "at least 1"},
		{name: "unknown engine", cfg: &validatedConfig{Addr: "127.0.0.1:1", Workers: 1, Engine: "epoll"}, wantErr: "one of [gnet net]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatorNil(t *testing.T) {
	assert.ErrorIs(t, NewValidator().Validate(nil), ErrNilConfig)
}

func TestValidatorValidateField(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ValidateField(5, "min=1"))
	assert.ErrorIs(t, v.ValidateField(0, "min=1"), ErrValidationFailed)
}

func TestValidatorRegisterValidation(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.RegisterValidation("exe", func(fl validator.FieldLevel) bool {
		return fl.Field().String() != ""
	}))

	type target struct {
		Path string `validate:"exe"`
	}
	assert.NoError(t, v.Validate(&target{Path: "opera"}))
	assert.Error(t, v.Validate(&target{}))
}
