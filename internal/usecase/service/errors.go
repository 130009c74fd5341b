package service

import (
	"fmt"
)

type DomainError struct {
	Code    string
	Message string
	Err     error
}

func WrapError(domainError *DomainError, err error) error {
	return &DomainError{
		Code:    domainError.Code,
		Message: domainError.Message,
		Err:     err,
	}
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is сравнивает по коду и сообщению, чтобы errors.Is находил обернутые копии
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

const (
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidRange = "INVALID_RANGE"
	CodeInvalidInput = "INVALID_INPUT"
)

var (
	// NOT_FOUND
	ErrTeamNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "team not found",
	}
	ErrCustomerNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "customer not found",
	}
	ErrProjectNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "project not found",
	}
	ErrReportNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "report not found",
	}

	// INVALID_RANGE
	ErrInvalidRange = &DomainError{
		Code:    CodeInvalidRange,
		Message: "period_start must be before period_end",
	}

	// INVALID_INPUT
	ErrInvalidInput = &DomainError{
		Code:    CodeInvalidInput,
		Message: "invalid input",
	}
)
