package services

import (
	"spareshop-api/utils/apperror"
	"spareshop-api/utils/common"
)

// Actor is the authenticated caller every service operation is performed for.
type Actor = common.Actor

func ensureAccess(actor Actor, ownerID uint) error {
	if !actor.CanAccess(ownerID) {
		return apperror.Forbidden("access denied")
	}
	return nil
}
