package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"spareshop-api/utils/apperror"
	"spareshop-api/utils/common"
)

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid %s", name)
	}
	return uint(id), nil
}

func actorOf(c *gin.Context) (common.Actor, error) {
	actor, ok := common.GetActor(c)
	if !ok {
		return common.Actor{}, apperror.Unauthorized("not authenticated")
	}
	return actor, nil
}

// bindError turns a binding failure into a validation error.
func bindError(err error) error {
	return apperror.Wrap(apperror.KindValidation, err, "invalid request body")
}
