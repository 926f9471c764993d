package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
	RoleCompanion Role = "companion"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOthers Gender = "others"
)

type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "single"
	MaritalMarried  MaritalStatus = "married"
	MaritalDivorced MaritalStatus = "divorced"
	MaritalWidowed  MaritalStatus = "widowed"
	MaritalOther    MaritalStatus = "other"
)

// Attachment is an uploaded file reference stored inline on a document.
type Attachment struct {
	Name string `bson:"name" json:"name"`
	Size int64  `bson:"size" json:"size"`
	Type string `bson:"type" json:"type"`
	Link string `bson:"link" json:"link"`
	Key  string `bson:"key,omitempty" json:"-"`
}

// OTP is a one-time code with an expiry.
type OTP struct {
	Code      string    `bson:"code"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

func (o *OTP) Matches(code string, at time.Time) bool {
	return o != nil && o.Code != "" && o.Code == strings.TrimSpace(code) && at.Before(o.ExpiresAt)
}

// Identity holds the fields shared by every account role.
type Identity struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName        string             `bson:"firstName" json:"firstName"`
	LastName         string             `bson:"lastName" json:"lastName"`
	Email            string             `bson:"email" json:"email"`
	Password         string             `bson:"password" json:"-"`
	Role             Role               `bson:"role" json:"role"`
	ProfilePicture   []Attachment       `bson:"profilePicture" json:"profilePicture"`
	VerificationOTP  *OTP               `bson:"verificationOtp,omitempty" json:"-"`
	ResetPasswordOTP *OTP               `bson:"resetPasswordOtp,omitempty" json:"-"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type UserProfile struct {
	Gender            Gender        `bson:"gender,omitempty" json:"gender,omitempty"`
	PhoneNumber       string        `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	DateOfBirth       *time.Time    `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	MaritalStatus     MaritalStatus `bson:"maritalStatus,omitempty" json:"maritalStatus,omitempty"`
	AnniversaryDate   *time.Time    `bson:"anniversaryDate,omitempty" json:"anniversaryDate,omitempty"`
	Address           string        `bson:"address,omitempty" json:"address,omitempty"`
	InstagramUsername string        `bson:"instagramUsername,omitempty" json:"instagramUsername,omitempty"`
	IsVerified        bool          `bson:"isVerified" json:"isVerified"`
	// IsRegistered is false for accounts created on behalf of an attached
	// companion until they complete registration.
	IsRegistered     bool   `bson:"isRegistered" json:"isRegistered"`
	TwoFactorEnabled bool   `bson:"twoFactorEnabled" json:"twoFactorEnabled"`
	TwoFactorSecret  string `bson:"twoFactorSecret,omitempty" json:"-"`
}

type AdminProfile struct {
	PhoneNumber string `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Address     string `bson:"address,omitempty" json:"address,omitempty"`
	Gender      Gender `bson:"gender,omitempty" json:"gender,omitempty"`
}

// Account is a tagged union keyed by Role: exactly one of User or Admin
// is set, matching the role.
type Account struct {
	Identity `bson:",inline"`
	User     *UserProfile  `bson:"user,omitempty" json:"user,omitempty"`
	Admin    *AdminProfile `bson:"admin,omitempty" json:"admin,omitempty"`
}

func NewUserAccount(firstName, lastName, email string, profile UserProfile) *Account {
	return &Account{
		Identity: Identity{FirstName: firstName, LastName: lastName, Email: NormalizeEmail(email), Role: RoleUser},
		User:     &profile,
	}
}

func NewAdminAccount(firstName, lastName, email string, profile AdminProfile) *Account {
	return &Account{
		Identity: Identity{FirstName: firstName, LastName: lastName, Email: NormalizeEmail(email), Role: RoleAdmin},
		Admin:    &profile,
	}
}

// CheckVariant reports whether the role-specific payload matches the role tag.
func (a *Account) CheckVariant() error {
	switch a.Role {
	case RoleUser:
		if a.User == nil || a.Admin != nil {
			return fmt.Errorf("user account must carry only a user profile")
		}
	case RoleAdmin:
		if a.Admin == nil || a.User != nil {
			return fmt.Errorf("admin account must carry only an admin profile")
		}
	default:
		return fmt.Errorf("unsupported account role %q", a.Role)
	}
	return nil
}

func (a *Account) BeforeCreate(now time.Time) error {
	if err := a.CheckVariant(); err != nil {
		return err
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.Email = NormalizeEmail(a.Email)
	if a.ProfilePicture == nil {
		a.ProfilePicture = []Attachment{}
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

func (a *Account) PhoneNumber() string {
	switch a.Role {
	case RoleUser:
		return a.User.PhoneNumber
	case RoleAdmin:
		return a.Admin.PhoneNumber
	}
	return ""
}

// IsRegistered is true for admins and for users who own their credentials.
func (a *Account) IsRegistered() bool {
	if a.Role == RoleUser {
		return a.User.IsRegistered
	}
	return true
}

// AccountSummary is the sanitized view embedded in populated documents.
type AccountSummary struct {
	ID          primitive.ObjectID `json:"id"`
	FirstName   string             `json:"firstName"`
	LastName    string             `json:"lastName"`
	Email       string             `json:"email"`
	PhoneNumber string             `json:"phoneNumber,omitempty"`
	Role        Role               `json:"role"`
}

func (a *Account) Summary() *AccountSummary {
	return &AccountSummary{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Email:       a.Email,
		PhoneNumber: a.PhoneNumber(),
		Role:        a.Role,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type AccountFilter struct {
	Role   Role
	Search string
}

type AccountRepo interface {
	CreateAccount(ctx context.Context, account *Account) error
	FindAccountByID(ctx context.Context, id primitive.ObjectID) (*Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*Account, error)
	SaveAccount(ctx context.Context, account *Account) error
	ListAccounts(ctx context.Context, filter AccountFilter, opts ListOptions) ([]*Account, int64, error)
	CountAccounts(ctx context.Context, filter AccountFilter) (int64, error)
}
