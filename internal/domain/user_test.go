package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserFromIdentity(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		id        string
		email     string
		role      string
		expectErr bool
		isOwner   bool
	}{
		{
			name:    "Valid owner",
			id:      "user-1",
			email:   "owner@example.com",
			role:    "owner",
			isOwner: true,
		},
		{
			name:  "Valid walker",
			id:    "user-2",
			email: "walker@example.com",
			role:  "walker",
		},
		{
			name:      "Invalid role",
			id:        "user-3",
			email:     "bad@example.com",
			role:      "admin",
			expectErr: true,
		},
		{
			name:      "Empty role",
			id:        "user-4",
			email:     "bad@example.com",
			role:      "",
			expectErr: true,
		},
		{
			name:      "Missing id",
			id:        "",
			email:     "owner@example.com",
			role:      "owner",
			expectErr: true,
		},
		{
			name:      "Missing email",
			id:        "user-5",
			email:     "",
			role:      "walker",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUserFromIdentity(tt.id, tt.email, tt.role, createdAt, IdentityMetadata{})
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			require.NoError(t, u.Validate())
			assert.Equal(t, tt.isOwner, u.IsOwner())
			assert.Equal(t, !tt.isOwner, u.IsWalker())
			assert.Equal(t, StatusNotStarted, u.OnboardingStatus)
		})
	}
}

func TestNewWalker_StartsWithEmptySchedule(t *testing.T) {
	u, err := NewWalker("w-1", "walker@example.com", time.Now(), IdentityMetadata{FirstName: "Sam"})
	require.NoError(t, err)

	require.NotNil(t, u.Walker)
	assert.Equal(t, VerificationPending, u.Walker.VerificationStatus)
	assert.Empty(t, u.Walker.Availability.Monday)
	assert.Empty(t, u.Walker.Availability.SlotsFor(time.Sunday))
	assert.Equal(t, "Sam", u.FirstName)
}

func TestValidate_RejectsMismatchedVariant(t *testing.T) {
	u, err := NewOwner("o-1", "owner@example.com", time.Now(), IdentityMetadata{})
	require.NoError(t, err)

	// Tag says owner, payload says walker.
	u.Owner = nil
	u.Walker = &WalkerProfile{Availability: EmptySchedule()}
	assert.Error(t, u.Validate())
}

func TestApply_MergePreservesRole(t *testing.T) {
	u, err := NewOwner("o-1", "owner@example.com", time.Now(), IdentityMetadata{FirstName: "Ada"})
	require.NoError(t, err)

	phone := "555-0101"
	merged, err := u.Apply(UserUpdate{Phone: &phone})
	require.NoError(t, err)

	assert.Equal(t, RoleOwner, merged.Role)
	assert.Equal(t, "555-0101", merged.Phone)
	assert.Equal(t, "Ada", merged.FirstName)
	// Original untouched.
	assert.Empty(t, u.Phone)
}

func TestApply_RoleChangeRebuildsVariant(t *testing.T) {
	u, err := NewOwner("o-1", "owner@example.com", time.Now(), IdentityMetadata{})
	require.NoError(t, err)
	u.Owner.Dogs = append(u.Owner.Dogs, Dog{ID: "d-1", Name: "Rex"})

	walker := RoleWalker
	merged, err := u.Apply(UserUpdate{Role: &walker})
	require.NoError(t, err)
	require.NoError(t, merged.Validate())

	assert.True(t, merged.IsWalker())
	assert.Nil(t, merged.Owner)
	assert.Equal(t, VerificationPending, merged.Walker.VerificationStatus)
	// Original untouched.
	assert.True(t, u.IsOwner())
	assert.Len(t, u.Owner.Dogs, 1)
}

func TestApply_VariantPayloadIgnoredOnRoleMismatch(t *testing.T) {
	u, err := NewOwner("o-1", "owner@example.com", time.Now(), IdentityMetadata{})
	require.NoError(t, err)

	merged, err := u.Apply(UserUpdate{Walker: &WalkerProfile{Bio: "hi", Availability: EmptySchedule()}})
	require.NoError(t, err)

	assert.True(t, merged.IsOwner())
	assert.Nil(t, merged.Walker)
}

func TestTimeSlotValidate(t *testing.T) {
	tests := []struct {
		name      string
		slot      TimeSlot
		expectErr bool
	}{
		{"Valid slot", TimeSlot{StartTime: "09:00", EndTime: "17:00", Available: true}, false},
		{"End before start", TimeSlot{StartTime: "17:00", EndTime: "09:00"}, true},
		{"Zero-length slot", TimeSlot{StartTime: "09:00", EndTime: "09:00"}, true},
		{"Garbage start", TimeSlot{StartTime: "nine", EndTime: "17:00"}, true},
		{"Garbage end", TimeSlot{StartTime: "09:00", EndTime: "25:99"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.slot.Validate()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWeeklyScheduleValidate(t *testing.T) {
	s := EmptySchedule()
	assert.NoError(t, s.Validate())

	s.Wednesday = append(s.Wednesday, TimeSlot{StartTime: "10:00", EndTime: "08:00"})
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wednesday")
}
