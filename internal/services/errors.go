package services

import "errors"

// Validation
var (
	ErrEmptyMessage     = errors.New("message content is empty")
	ErrInvalidIdentity  = errors.New("invalid user identity")
	ErrSelfRequest      = errors.New("cannot send a connection request to yourself")
	ErrInvalidEventType = errors.New("invalid notification type")
	ErrWeakPassword     = errors.New("password is too short")
)

// Authorization
var ErrNotConnected = errors.New("you can only message users you are connected with")

// Not found
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrRequestNotFound = errors.New("connection request not found")
)

// Conflict
var (
	ErrRequestExists    = errors.New("connection request already pending")
	ErrAlreadyConnected = errors.New("users are already connected")
	ErrEmailExists      = errors.New("email already exists")
)

// Authentication
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)
