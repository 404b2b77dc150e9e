package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleEmployee, PermissionAttendanceCreate))
	assert.True(t, HasPermission(RoleAdmin, PermissionEditOwnProfile))
	assert.False(t, HasPermission(Role("guest"), PermissionAttendanceCreate))
}

func TestUser_DisplayName(t *testing.T) {
	u := User{Email: "jane@example.com"}
	assert.Equal(t, "jane@example.com", u.DisplayName())
	u.Name = "Jane"
	assert.Equal(t, "Jane", u.DisplayName())
	assert.False(t, u.IsAdmin())
}

func TestUpdateProfileRequest_Validate(t *testing.T) {
	assert.Error(t, (&UpdateProfileRequest{}).Validate())
	assert.NoError(t, (&UpdateProfileRequest{Name: strPtr("Jane Doe")}).Validate())
	assert.Error(t, (&UpdateProfileRequest{Name: strPtr("   ")}).Validate())
	assert.Error(t, (&UpdateProfileRequest{Phone: strPtr("12ab")}).Validate())
	assert.NoError(t, (&UpdateProfileRequest{Phone: strPtr("+1 555 123 4567")}).Validate())
}
