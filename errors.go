package accesscore

import "errors"

var (
	// ErrEngineClosed is returned by Start and SignIn after Close.
	ErrEngineClosed = errors.New("engine closed")
	// ErrRecordNotFound is the record store's "no rows" condition. Store
	// implementations return it (wrapped is fine) from FindUserBySubjectID
	// when no record exists for the subject.
	ErrRecordNotFound = errors.New("record not found")
	// ErrNoIdentity is returned when the identity provider reports a
	// successful sign-in but no live identity can be fetched.
	ErrNoIdentity = errors.New("identity provider has no live session")
	// ErrNoSession is returned by RefreshSession when there is nothing to
	// refresh.
	ErrNoSession = errors.New("no active session")
	// ErrSignInRateLimited is returned by SignIn before the provider is
	// consulted when the address or client IP is over its attempt budget.
	ErrSignInRateLimited = errors.New("sign-in rate limited")
	// ErrRefreshRateLimited is returned by RefreshSession when refreshes
	// for the subject are over budget.
	ErrRefreshRateLimited = errors.New("session refresh rate limited")

	// ErrRecordLookup marks a transient user-record lookup failure. It is
	// never returned to callers: bootstrap converts it into a degraded
	// session and the error appears only in logs and audit events.
	ErrRecordLookup = errors.New("user record lookup failed")
	// ErrRecordCreate marks a user-record creation failure; same handling
	// as ErrRecordLookup.
	ErrRecordCreate = errors.New("user record creation failed")
	// ErrBusinessLookup marks an owned-business lookup failure; same
	// handling as ErrRecordLookup.
	ErrBusinessLookup = errors.New("business lookup failed")
)
