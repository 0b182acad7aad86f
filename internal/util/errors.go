package util

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailRegistered   = errors.New("email already registered")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrTestNotFound      = errors.New("test not found")
	ErrTestNotPublished  = errors.New("test not published or not accessible")
	ErrSectionNotFound   = errors.New("section not found")
	ErrQuestionNotFound  = errors.New("question not found in the active section")
	ErrNoAccess          = errors.New("no access to this test")
	ErrAlreadyTaken      = errors.New("test already taken")
	ErrNotYetScheduled   = errors.New("test is not open yet")
	ErrSessionNotFound   = errors.New("no active exam session")
	ErrResultSaveFailed  = errors.New("failed to save the result, answers are kept, please retry")
)
