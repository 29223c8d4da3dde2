package application

import "errors"

// Domain errors. All of these are operational: stable message, mapped
// to a status class at the transport layer, safe to send verbatim.
// Anything else that escapes a service is an internal error and is
// collapsed to a generic message before it reaches a response body.
var (
	// Login and password-confirm failures are indistinguishable from an
	// unknown email on purpose (enumeration resistance).
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrUserNotFound      = errors.New("no user found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
	ErrUserNotVerified   = errors.New("user is not verified")

	// Wrong, unknown and expired tokens all fail the same way.
	ErrInvalidToken = errors.New("token is invalid or has expired")

	// Bot lookups conflate "does not exist" with "exists but the caller
	// has no access": both are ErrBotNotFound.
	ErrBotNotFound      = errors.New("no bot found")
	ErrBotAlreadyExists = errors.New("bot url already exists")

	ErrReplyNotFound      = errors.New("no reply found")
	ErrReplyAlreadyExists = errors.New("reply with this answer or keyword already exists")

	// Owners cannot be invited as moderators of their own bot.
	ErrSelfInvite = errors.New("owner cannot be invited as moderator")

	ErrEmailNotSent = errors.New("email was not sent")
)
