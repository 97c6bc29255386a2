// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a verified identity, keyed by mobile number
type User struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Mobile     string             `json:"mobile" bson:"mobile"`
	Name       string             `json:"name" bson:"name"`
	Address    string             `json:"address" bson:"address"`
	Role       string             `json:"role" bson:"role"` // "user" or "admin"
	IsVerified bool               `json:"isVerified" bson:"isVerified"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// PendingUser is a registration awaiting OTP verification. The record itself
// is subject to a 600s TTL from creation, independent of the OTP expiry.
type PendingUser struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Mobile     string             `json:"mobile" bson:"mobile"`
	Name       string             `json:"name" bson:"name"`
	Address    string             `json:"address" bson:"address"`
	OTP        string             `json:"-" bson:"otp"`
	OTPExpires time.Time          `json:"-" bson:"otpExpires"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// PhoneChallenge holds the current login OTP for a mobile number. Login codes
// live here rather than on the user document, so stale OTP state never rides
// along on unrelated reads of the user.
type PhoneChallenge struct {
	Mobile    string    `bson:"mobile"`
	OTP       string    `bson:"otp"`
	ExpiresAt time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}
