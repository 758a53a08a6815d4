package client

import (
	"errors"

	"github.com/dmitrijs2005/medreminder/internal/common"
)

var (
	ErrInvalidData        = errors.New("invalid data")
	ErrServerError        = errors.New("server error")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnavailable        = errors.New("server unavailable")
)

// codeTable maps the wire codes one endpoint may return to client failures.
type codeTable map[common.ErrorCode]error

var (
	createAccountCodes = codeTable{
		common.CodeInvalidData:       ErrInvalidData,
		common.CodeUserAlreadyExists: ErrUserAlreadyExists,
	}
	loginCodes = codeTable{
		common.CodeInvalidData:        ErrInvalidData,
		common.CodeInvalidCredentials: ErrInvalidCredentials,
	}
	sendOTPCodes = codeTable{
		common.CodeInvalidData:        ErrInvalidData,
		common.CodeInvalidCredentials: ErrInvalidCredentials,
		common.CodeUserAlreadyExists:  ErrUserAlreadyExists,
	}
	forgotPasswordCodes = codeTable{
		common.CodeInvalidData:        ErrInvalidData,
		common.CodeInvalidCredentials: ErrInvalidCredentials,
	}
)

func (t codeTable) lookup(code common.ErrorCode) error {
	if err, ok := t[code]; ok {
		return err
	}
	return ErrServerError
}
