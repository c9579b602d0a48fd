package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Rule errors
	ErrRuleNotFound    = errors.New("automation rule not found")
	ErrProjectNotFound = errors.New("project not found")

	// Validation errors (malformed rule, rejected before persisting)
	ErrInvalidTrigger     = errors.New("invalid trigger type")
	ErrInvalidAction      = errors.New("invalid action type")
	ErrInvalidCondition   = errors.New("condition does not match trigger type")
	ErrInvalidActionValue = errors.New("action value does not match action type")
	ErrInvalidRuleStatus  = errors.New("invalid rule status")
	ErrEmptyRuleName      = errors.New("rule name is required")

	// Event errors
	ErrUnrecognizedEvent = errors.New("unrecognized event type")

	// Execution errors
	ErrActionExecution = errors.New("action execution failed")

	// Collaborator errors, wrapped into ErrActionExecution by the executor
	ErrNotFound   = errors.New("not found")
	ErrPermission = errors.New("permission denied")
	ErrDelivery   = errors.New("notification delivery failed")

	// Auth errors
	ErrInvalidToken = errors.New("invalid authentication token")
)
