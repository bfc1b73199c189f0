package users

import "go.mongodb.org/mongo-driver/bson/primitive"

// AdminRole marks administrator accounts inside the role set.
const AdminRole = "admin"

// GoogleData is the federated-identity sub-record stored for accounts created
// through Google login.
type GoogleData struct {
	DisplayName string `bson:"displayName,omitempty" json:"displayName,omitempty"`
	UserID      string `bson:"userId,omitempty" json:"userId,omitempty"`
	Picture     string `bson:"picture,omitempty" json:"picture,omitempty"`
}

// User is the account document. Password is absent for pure federated
// accounts; FCMToken is only present once a device registered for push.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Blocked   bool               `bson:"blocked" json:"blocked"`
	PlaceID   string             `bson:"placeId,omitempty" json:"placeId,omitempty"`
	Interests []string           `bson:"interests,omitempty" json:"interests,omitempty"`
	Roles     []string           `bson:"roles,omitempty" json:"roles,omitempty"`
	FCMToken  string             `bson:"fcmtoken,omitempty" json:"-"`
	Google    *GoogleData        `bson:"googleData,omitempty" json:"googleData,omitempty"`
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	for _, role := range u.Roles {
		if role == AdminRole {
			return true
		}
	}
	return false
}

// IsValidID reports whether id is a well-formed account identifier.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}
