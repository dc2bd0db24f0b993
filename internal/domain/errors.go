package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrRateLimited   = errors.New("rate limited")
	ErrInvalidTrade  = errors.New("invalid trade parameters")
	ErrNoContract    = errors.New("no contract configured for trade")
	ErrNoRequestID   = errors.New("request id not found in transaction logs")
	ErrSigningFailed = errors.New("signing failed")
)
