package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skni-kod/kolo-rest-api/errs"
	"github.com/skni-kod/kolo-rest-api/models"
)

func uintPtr(v uint) *uint { return &v }

func TestCommentWrite_ExactlyOneTarget(t *testing.T) {
	tests := []struct {
		name    string
		payload CommentWrite
		wantErr bool
	}{
		{"neither", CommentWrite{Text: "hi"}, true},
		{"both", CommentWrite{Text: "hi", Article: uintPtr(1), Project: uintPtr(2)}, true},
		{"article", CommentWrite{Text: "hi", Article: uintPtr(1)}, false},
		{"project", CommentWrite{Text: "hi", Project: uintPtr(2)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.payload)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.IsValidationError(err))
			assert.Equal(t, 400, errs.StatusCode(err))
		})
	}
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(&ArticleWrite{Group: "Blog"})
	require.Error(t, err)

	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "This field is required.", apiErr.Fields["title"])
	assert.Equal(t, "This field is required.", apiErr.Fields["alias"])
	assert.Equal(t, `"Blog" is not a valid choice.`, apiErr.Fields["group"])
}

func TestRegistration_PasswordsMustMatch(t *testing.T) {
	err := Validate(&Registration{
		Username:  "jan",
		Password1: "secret-one",
		Password2: "secret-two",
		FirstName: "Jan",
		LastName:  "Kowalski",
	})
	require.Error(t, err)
	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Fields, "non_field_errors")
}

func TestUserWrite_RejectsBadUsername(t *testing.T) {
	err := Validate(&UserWrite{Username: "jan kowalski"})
	require.Error(t, err)
	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "username", apiErr.Field)
}

func TestGenericLinkWrite_UnknownKind(t *testing.T) {
	err := Validate(&GenericLinkWrite{Link: "https://example.com", LinkType: "OTHER", ContentType: "sponsor", ObjectID: 1})
	require.Error(t, err)
	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "content_type", apiErr.Field)
}

func TestNewHardware_StatusFollowsOpenRentals(t *testing.T) {
	rented := NewHardware(models.Hardware{ID: 1, Status: models.HardwareAvailable, IsRented: true})
	assert.Equal(t, models.HardwareRented, rented.Status)

	returned := NewHardware(models.Hardware{ID: 2, Status: models.HardwareRented, IsRented: false})
	assert.Equal(t, models.HardwareAvailable, returned.Status)

	broken := NewHardware(models.Hardware{ID: 3, Status: models.HardwareUnavailable})
	assert.Equal(t, models.HardwareUnavailable, broken.Status)
	assert.False(t, broken.IsRented)
}

func TestNewUser_Permissions(t *testing.T) {
	member := models.User{
		ID:       7,
		Username: "member",
		Groups: []models.Group{{
			ID:          3,
			Name:        "editors",
			Permissions: []models.GroupPermission{{Codename: "change_article"}},
		}},
		Profile: &models.Profile{ID: 9},
	}
	out := NewUser(member)

	assert.Equal(t, []uint{3}, out.Groups)
	require.NotNil(t, out.Profile)
	assert.Equal(t, uint(9), *out.Profile)
	assert.False(t, out.IsAdminUser)
	assert.True(t, out.Permissions["change_article"])
	assert.False(t, out.Permissions["delete_article"])
	assert.Len(t, out.Permissions, len(models.AllCodenames()))

	staff := NewUser(models.User{ID: 1, IsStaff: true})
	assert.True(t, staff.IsAdminUser)
	assert.True(t, staff.Permissions["delete_group"])
}
