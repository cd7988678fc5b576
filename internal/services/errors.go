// Package services defines the business logic for prayers, support, comments,
// and groups. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrPrayerNotFound indicates that the requested prayer does not exist or
	// is not accessible to the current user.
	ErrPrayerNotFound = errors.New("prayer not found")

	// ErrContentTooShort is returned when prayer content is below the
	// configured minimum length.
	ErrContentTooShort = errors.New("content too short")

	// ErrContentTooLong is returned when prayer or comment content exceeds
	// the configured maximum length.
	ErrContentTooLong = errors.New("content too long")

	// ErrEmptyContent is returned when a create request contains no content.
	ErrEmptyContent = errors.New("content is empty")

	// ErrInvalidSupportType is returned when a support type is outside the
	// allowed set (praying, heart, hug).
	ErrInvalidSupportType = errors.New("invalid support type")

	// ErrDuplicateSupport is returned when a user attempts to add a support
	// of a type they have already given to the same prayer.
	ErrDuplicateSupport = errors.New("support already exists")

	// ErrSupportNotFound indicates no support of the requested type exists
	// for this user on this prayer.
	ErrSupportNotFound = errors.New("support not found")

	// ErrGroupNotFound indicates that the requested group does not exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrNotGroupMember is returned when a user acts on a group they do not
	// belong to.
	ErrNotGroupMember = errors.New("not a group member")

	// ErrAlreadyMember is returned when a user joins a group twice.
	ErrAlreadyMember = errors.New("already a group member")

	// ErrForbidden is returned when a user reads a private prayer that is
	// neither theirs nor shared with a group they belong to.
	ErrForbidden = errors.New("not allowed to view this prayer")
)
