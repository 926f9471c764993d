package helpers

import (
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnhancedClaims is the authenticated principal stored on the request
// context under "user". Account is set for users and admins; Companion is
// set for companion sessions.
type EnhancedClaims struct {
	*CustomClaims
	Token     string
	Account   *models.Account
	Companion *models.Companion
}

func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role == models.RoleAdmin
}

func (ec *EnhancedClaims) IsCompanion() bool {
	return ec.Role == models.RoleCompanion
}

func (ec *EnhancedClaims) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if ec.Role == r {
			return true
		}
	}
	return false
}

func (ec *EnhancedClaims) IsOwner(userID primitive.ObjectID) bool {
	return ec.UserObjectID() == userID
}

// UserObjectID is the account id the token was issued for.
func (ec *EnhancedClaims) UserObjectID() primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(ec.UserID)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

func (ec *EnhancedClaims) CompanionObjectID() primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(ec.CompanionID)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

func (ec *EnhancedClaims) GetSafeRole() models.Role {
	if ec.CustomClaims == nil || ec.Role == "" {
		return "guest"
	}
	return ec.Role
}
