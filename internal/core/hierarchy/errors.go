package hierarchy

import "errors"

// Root errors
var (
	// ErrDuplicateIdentity indicates an Add of a payload whose identity is already present.
	ErrDuplicateIdentity = errors.New("identity already present")

	// ErrIdentityNotFound indicates that no leaf carries the requested identity.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrCategoryNotFound indicates that no group exists for a category.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrReentrantMutation indicates a structural mutation attempted from an
	// observer while another mutation is still in progress.
	ErrReentrantMutation = errors.New("re-entrant mutation during notification")
)

// Group errors
var (
	// ErrDuplicateLeaf indicates a leaf insert of an identity the group already holds.
	ErrDuplicateLeaf = errors.New("leaf already present in group")

	// ErrLeafNotFound indicates a leaf removal of an identity the group does not hold.
	ErrLeafNotFound = errors.New("leaf not found in group")

	// ErrDetached indicates navigation on a leaf or group that was removed.
	ErrDetached = errors.New("node is detached from the hierarchy")
)
