package constants

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jacksonlee411/approvals/pkg/cnpj"
)

type ContextKey string

const (
	AppKey       ContextKey = "app"
	LoggerKey    ContextKey = "logger"
	RequestStart ContextKey = "requestStart"
	PoolKey      ContextKey = "pool"
	TxKey        ContextKey = "tx"
	AccountIDKey ContextKey = "accountID"
	AccountKey   ContextKey = "account"
	UserKey      ContextKey = "user"
	AbilityKey   ContextKey = "ability"
	ParamsKey    ContextKey = "params"
)

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
		return cnpj.Valid(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}
