package workflow

import "errors"

// Configuration errors, rejected at definition-save time.
var (
	ErrInvalidDefinition  = errors.New("invalid workflow definition")
	ErrDefinitionNotFound = errors.New("no workflow definition found for document type")
)

// State errors: the operation does not match the instance lifecycle.
var (
	ErrInstanceNotFound         = errors.New("workflow instance not found")
	ErrDuplicatePendingInstance = errors.New("a pending workflow instance already exists for this document")
	ErrInstanceNotPending       = errors.New("workflow instance is not pending")
	ErrInstanceNotRejected      = errors.New("workflow instance is not rejected")
)

// ErrNotAuthorizedForLevel means the actor's roles do not intersect the
// current level's approver roles.
var ErrNotAuthorizedForLevel = errors.New("actor is not authorized for the current approval level")

// Concurrency errors. Transient: callers re-fetch the instance and retry
// once before surfacing the failure.
var (
	ErrStaleVersion            = errors.New("workflow instance was modified concurrently")
	ErrDuplicateDecisionByRole = errors.New("a decision for this role is already recorded at the current level")
)
