package auth

import (
	"github.com/devfolio/portfolio-api/internal/utils"
)

// CheckOwnership allows an action only when the requester owns the resource.
//
// Parameters:
//   - requesterID: the authenticated user's ID
//   - ownerID: the owner recorded on the resource
//   - action: the verb used in the error message, e.g. "update"
//
// Returns:
//   - nil if the requester is the owner
//   - an AppError wrapping utils.ErrNotOwner otherwise
func CheckOwnership(requesterID, ownerID int64, action string) error {
	if requesterID <= 0 || requesterID != ownerID {
		return utils.NewNotOwnerError(action)
	}
	return nil
}
