package utils

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/vitwit/tonpay/types"
)

var (
	validate *validator.Validate

	base58Pattern = regexp.MustCompile("^[1-9A-HJ-NP-Za-km-z]+$")
	bech32Pattern = regexp.MustCompile("^(bc|tb|bcrt)1[02-9ac-hj-np-z]+$")
)

func init() {
	validate = validator.New()
}

// ValidateStruct runs struct-tag validation and reports failures with code.
func ValidateStruct(v any, code string) error {
	if err := validate.Struct(v); err != nil {
		return &types.Error{
			Code:    code,
			Message: fmt.Sprintf("validation failed: %v", err),
			Err:     err,
		}
	}
	return nil
}

// ValidateConfig validates the SDK configuration
func ValidateConfig(cfg *types.Config) error {
	if cfg == nil {
		return &types.Error{Code: types.CodeConfigError, Message: "config is required"}
	}
	return ValidateStruct(cfg, types.CodeConfigError)
}
