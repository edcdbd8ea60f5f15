package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Msg != "" && e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	default:
		return "validation error"
	}
}

func (e ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type AuthorizationError struct {
	Msg string
}

func (e AuthorizationError) Error() string {
	if e.Msg == "" {
		return "forbidden"
	}
	return e.Msg
}

// UnauthenticatedError means the caller could not be identified.
type UnauthenticatedError struct {
	Msg string
}

func (e UnauthenticatedError) Error() string {
	if e.Msg == "" {
		return "unauthenticated"
	}
	return e.Msg
}

// InsufficientInventoryError is returned when a ticket type cannot cover a
// requested quantity. The ledger performs no mutation in that case.
type InsufficientInventoryError struct {
	TicketTypeID uuid.UUID
	Requested    int
}

func (e InsufficientInventoryError) Error() string {
	return fmt.Sprintf("not enough tickets available for %s", e.TicketTypeID)
}

type MismatchReason string

const (
	MismatchBuyer        MismatchReason = "mismatch"
	MismatchNotSucceeded MismatchReason = "not_succeeded"
)

type PaymentMismatchError struct {
	Reason MismatchReason
	Status PaymentStatus
}

func (e PaymentMismatchError) Error() string {
	if e.Reason == MismatchNotSucceeded {
		return fmt.Sprintf("payment not succeeded, status: %s", e.Status)
	}
	return "payment confirmation does not belong to requester"
}

type AlreadyUsedError struct {
	Index int
}

func (e AlreadyUsedError) Error() string {
	return "ticket already used"
}

// DependencyError wraps failures of payment, rendering and mail providers.
type DependencyError struct {
	Dependency string
	Timeout    bool
	Err        error
}

func (e DependencyError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s timed out", e.Dependency)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Dependency)
	}
	return fmt.Sprintf("%s failed: %v", e.Dependency, e.Err)
}

func (e DependencyError) Unwrap() error { return e.Err }

// DeliveryError means the order is durably stored but the ticket document
// could not be produced or sent.
type DeliveryError struct {
	OrderID uuid.UUID
	Err     error
}

func (e DeliveryError) Error() string {
	return fmt.Sprintf("order %s created but ticket delivery failed: %v", e.OrderID, e.Err)
}

func (e DeliveryError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// WorkflowError is the Failed{stage, reason} terminal of the order workflow.
type WorkflowError struct {
	Stage Stage
	Err   error
}

func (e WorkflowError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e WorkflowError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsAuthorization(err error) bool {
	var target AuthorizationError
	return errors.As(err, &target)
}

func IsUnauthenticated(err error) bool {
	var target UnauthenticatedError
	return errors.As(err, &target)
}

func IsInsufficientInventory(err error) bool {
	var target InsufficientInventoryError
	return errors.As(err, &target)
}

func IsPaymentMismatch(err error) bool {
	var target PaymentMismatchError
	return errors.As(err, &target)
}

func IsAlreadyUsed(err error) bool {
	var target AlreadyUsedError
	return errors.As(err, &target)
}

func IsDependency(err error) bool {
	var target DependencyError
	return errors.As(err, &target)
}

func IsTimeout(err error) bool {
	var target DependencyError
	return errors.As(err, &target) && target.Timeout
}

func IsDelivery(err error) bool {
	var target DeliveryError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// StageOf reports the workflow stage an error was raised in, if any.
func StageOf(err error) (Stage, bool) {
	var target WorkflowError
	if errors.As(err, &target) {
		return target.Stage, true
	}
	return "", false
}
