package domain

import (
	"errors"
	"fmt"
	"time"
)

// ProgressStatus tracks multi-step flows (onboarding, profile setup).
type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

// VerificationStatus is a walker's identity/background verification state.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// User is the role-tagged profile. Role is the discriminant: exactly one
// of Owner/Walker is populated and it must match Role. The invariant is
// enforced by Validate and by the factories; provider payloads go through
// NewUserFromIdentity, never straight into this struct.
type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	Role             Role           `json:"role"`
	FirstName        string         `json:"first_name,omitempty"`
	LastName         string         `json:"last_name,omitempty"`
	Phone            string         `json:"phone,omitempty"`
	PhotoURL         string         `json:"photo_url,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	OnboardingStatus ProgressStatus `json:"onboarding_status"`
	SetupStatus      ProgressStatus `json:"setup_status"`

	Owner  *OwnerProfile  `json:"owner,omitempty"`
	Walker *WalkerProfile `json:"walker,omitempty"`
}

// OwnerProfile carries the owner-side payload.
type OwnerProfile struct {
	Location       *Location       `json:"location,omitempty"`
	Dogs           []Dog           `json:"dogs"`
	PaymentMethods []PaymentMethod `json:"payment_methods"`
}

// WalkerProfile carries the walker-side payload.
type WalkerProfile struct {
	Bio                   string                 `json:"bio,omitempty"`
	Experience            string                 `json:"experience,omitempty"`
	DateOfBirth           *time.Time             `json:"date_of_birth,omitempty"`
	VerificationStatus    VerificationStatus     `json:"verification_status"`
	Availability          WeeklySchedule         `json:"availability"`
	HourlyRate            *float64               `json:"hourly_rate,omitempty"`
	Rating                *float64               `json:"rating,omitempty"`
	TotalWalks            int                    `json:"total_walks"`
	BankInfo              *BankInfo              `json:"bank_info,omitempty"`
	VerificationDocuments *VerificationDocuments `json:"verification_documents,omitempty"`
}

// IdentityMetadata is the subset of provider user metadata the profile
// factories consume.
type IdentityMetadata struct {
	FirstName string
	LastName  string
	Phone     string
	PhotoURL  string
}

var (
	// ErrInvalidIdentity is returned when provider identity data is
	// missing required fields.
	ErrInvalidIdentity = errors.New("invalid identity: missing id or email")
)

// NewOwner builds a fresh owner profile from identity data.
func NewOwner(id, email string, createdAt time.Time, meta IdentityMetadata) (*User, error) {
	u, err := newBase(id, email, RoleOwner, createdAt, meta)
	if err != nil {
		return nil, err
	}
	u.Owner = &OwnerProfile{
		Dogs:           []Dog{},
		PaymentMethods: []PaymentMethod{},
	}
	return u, nil
}

// NewWalker builds a fresh walker profile from identity data.
func NewWalker(id, email string, createdAt time.Time, meta IdentityMetadata) (*User, error) {
	u, err := newBase(id, email, RoleWalker, createdAt, meta)
	if err != nil {
		return nil, err
	}
	u.Walker = &WalkerProfile{
		VerificationStatus: VerificationPending,
		Availability:       EmptySchedule(),
	}
	return u, nil
}

// NewUserFromIdentity maps untrusted provider identity data onto the
// role-tagged variant. The role string is validated here, not assumed.
func NewUserFromIdentity(id, email, role string, createdAt time.Time, meta IdentityMetadata) (*User, error) {
	r, ok := ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("invalid user role: %q", role)
	}
	switch r {
	case RoleOwner:
		return NewOwner(id, email, createdAt, meta)
	default:
		return NewWalker(id, email, createdAt, meta)
	}
}

func newBase(id, email string, role Role, createdAt time.Time, meta IdentityMetadata) (*User, error) {
	if id == "" || email == "" {
		return nil, ErrInvalidIdentity
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return &User{
		ID:               id,
		Email:            email,
		Role:             role,
		FirstName:        meta.FirstName,
		LastName:         meta.LastName,
		Phone:            meta.Phone,
		PhotoURL:         meta.PhotoURL,
		CreatedAt:        createdAt,
		OnboardingStatus: StatusNotStarted,
		SetupStatus:      StatusNotStarted,
	}, nil
}

// Validate enforces the tag/variant invariant. Deserialized snapshots go
// through this before being trusted.
func (u *User) Validate() error {
	if u.ID == "" || u.Email == "" {
		return ErrInvalidIdentity
	}
	if !u.Role.Valid() {
		return fmt.Errorf("invalid user role: %q", u.Role)
	}
	switch u.Role {
	case RoleOwner:
		if u.Owner == nil || u.Walker != nil {
			return fmt.Errorf("owner user with mismatched profile payload")
		}
	case RoleWalker:
		if u.Walker == nil || u.Owner != nil {
			return fmt.Errorf("walker user with mismatched profile payload")
		}
	}
	return nil
}

// IsOwner reports whether the user is on the owner side.
func (u *User) IsOwner() bool { return u.Role == RoleOwner && u.Owner != nil }

// IsWalker reports whether the user is on the walker side.
func (u *User) IsWalker() bool { return u.Role == RoleWalker && u.Walker != nil }

// Clone returns a deep-enough copy for merge-then-swap updates. Slice and
// pointer payloads are copied so an aborted update never leaks partial
// mutations into the live profile.
func (u *User) Clone() *User {
	cp := *u
	if u.Owner != nil {
		owner := *u.Owner
		owner.Dogs = append([]Dog(nil), u.Owner.Dogs...)
		owner.PaymentMethods = append([]PaymentMethod(nil), u.Owner.PaymentMethods...)
		if u.Owner.Location != nil {
			loc := *u.Owner.Location
			owner.Location = &loc
		}
		cp.Owner = &owner
	}
	if u.Walker != nil {
		walker := *u.Walker
		if u.Walker.DateOfBirth != nil {
			dob := *u.Walker.DateOfBirth
			walker.DateOfBirth = &dob
		}
		if u.Walker.HourlyRate != nil {
			rate := *u.Walker.HourlyRate
			walker.HourlyRate = &rate
		}
		if u.Walker.Rating != nil {
			rating := *u.Walker.Rating
			walker.Rating = &rating
		}
		if u.Walker.BankInfo != nil {
			bank := *u.Walker.BankInfo
			walker.BankInfo = &bank
		}
		if u.Walker.VerificationDocuments != nil {
			docs := *u.Walker.VerificationDocuments
			walker.VerificationDocuments = &docs
		}
		cp.Walker = &walker
	}
	return &cp
}

// WithRole rebuilds the variant for a new role, preserving the common
// base fields. The new side starts from a fresh payload; owner- or
// walker-specific data does not survive a side switch.
func (u *User) WithRole(role Role) (*User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid user role: %q", role)
	}
	if role == u.Role {
		return u.Clone(), nil
	}
	cp := u.Clone()
	cp.Role = role
	cp.Owner = nil
	cp.Walker = nil
	switch role {
	case RoleOwner:
		cp.Owner = &OwnerProfile{Dogs: []Dog{}, PaymentMethods: []PaymentMethod{}}
	case RoleWalker:
		cp.Walker = &WalkerProfile{
			VerificationStatus: VerificationPending,
			Availability:       EmptySchedule(),
		}
	}
	return cp, nil
}

// UserUpdate is a partial profile update. Nil fields are left untouched.
type UserUpdate struct {
	FirstName        *string         `json:"first_name,omitempty"`
	LastName         *string         `json:"last_name,omitempty"`
	Phone            *string         `json:"phone,omitempty"`
	PhotoURL         *string         `json:"photo_url,omitempty"`
	Role             *Role           `json:"role,omitempty"`
	OnboardingStatus *ProgressStatus `json:"onboarding_status,omitempty"`
	SetupStatus      *ProgressStatus `json:"setup_status,omitempty"`
	Owner            *OwnerProfile   `json:"owner,omitempty"`
	Walker           *WalkerProfile  `json:"walker,omitempty"`
}

// Apply merges the update into a copy of the user, preserving the role
// discriminant. A role change rebuilds the variant via WithRole; variant
// payloads in the update only apply when they match the resulting role.
func (u *User) Apply(update UserUpdate) (*User, error) {
	merged := u.Clone()
	if update.Role != nil && *update.Role != u.Role {
		var err error
		merged, err = u.WithRole(*update.Role)
		if err != nil {
			return nil, err
		}
	}
	if update.FirstName != nil {
		merged.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		merged.LastName = *update.LastName
	}
	if update.Phone != nil {
		merged.Phone = *update.Phone
	}
	if update.PhotoURL != nil {
		merged.PhotoURL = *update.PhotoURL
	}
	if update.OnboardingStatus != nil {
		merged.OnboardingStatus = *update.OnboardingStatus
	}
	if update.SetupStatus != nil {
		merged.SetupStatus = *update.SetupStatus
	}
	if update.Owner != nil && merged.Role == RoleOwner {
		owner := *update.Owner
		merged.Owner = &owner
	}
	if update.Walker != nil && merged.Role == RoleWalker {
		walker := *update.Walker
		merged.Walker = &walker
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}
