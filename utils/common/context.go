package common

import (
	"github.com/gin-gonic/gin"

	"spareshop-api/models"
)

const (
	ActorKey = "actor"
)

// Actor is the caller identity resolved from a verified access token.
type Actor struct {
	UserID   uint
	Email    string
	Username string
	Role     string
	IP       string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanAccess reports whether the actor may act on data owned by ownerID.
func (a Actor) CanAccess(ownerID uint) bool {
	return a.IsAdmin() || a.UserID == ownerID
}

func SetActor(c *gin.Context, a Actor) {
	c.Set(ActorKey, a)
}

func GetActor(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return Actor{}, false
	}
	a, ok := v.(Actor)
	return a, ok
}

func GetUserRole(c *gin.Context) string {
	a, _ := GetActor(c)
	return a.Role
}

func GetUserID(c *gin.Context) *uint {
	a, ok := GetActor(c)
	if !ok {
		return nil
	}
	id := a.UserID
	return &id
}

func GetStringValue(ptr *string) string {
	if ptr != nil {
		return *ptr
	}
	return ""
}
