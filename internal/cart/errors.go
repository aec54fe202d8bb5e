// Package cart maintains one user's pending ticket selections and the
// transfer of those selections into permanent tickets at purchase time.
//
// The sentinel errors below form the failure taxonomy for every cart
// and purchase operation. Handlers translate them into HTTP statuses;
// the service never uses errors for internal control flow.
package cart

import "errors"

// ErrNotFound is returned when the user, event, or cart line named by
// the request does not exist. Terminal for the request.
var ErrNotFound = errors.New("not found")

// ErrInvalidArgument is returned for missing event IDs, ticket types
// outside {general, vip}, or non-positive quantities. Always
// caller-correctable.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInsufficientCartQuantity is returned when a single-line purchase
// asks for more lines than the cart holds for that key.
var ErrInsufficientCartQuantity = errors.New("not enough items in cart")

// ErrInsufficientInventory is returned when the event no longer has
// enough tickets of the requested type. The purchase is fully rolled
// back.
var ErrInsufficientInventory = errors.New("not enough tickets available")

// ErrPersistence is returned when the store is unavailable or a write
// conflict occurred. The caller may retry; the service never retries
// internally.
var ErrPersistence = errors.New("persistence failure")
