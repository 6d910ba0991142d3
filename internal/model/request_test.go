package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequestValidate(t *testing.T) {
	valid := RegisterRequest{
		Username:        "pharmacy1",
		Email:           "owner@pharmacy.test",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
	assert.NoError(t, valid.Validate())

	mismatch := valid
	mismatch.ConfirmPassword = "different"
	assert.Error(t, mismatch.Validate())

	badEmail := valid
	badEmail.Email = "not-an-email"
	assert.Error(t, badEmail.Validate())

	shortPassword := valid
	shortPassword.Password = "abc"
	shortPassword.ConfirmPassword = "abc"
	assert.Error(t, shortPassword.Validate())

	badRole := valid
	badRole.Role = "superuser"
	assert.Error(t, badRole.Validate())

	knownRole := valid
	knownRole.Role = "hopital"
	assert.NoError(t, knownRole.Validate())
}

func TestUpdateUserRequestValidate(t *testing.T) {
	username := "newname1"
	assert.NoError(t, UpdateUserRequest{Username: &username}.Validate())

	assert.Error(t, UpdateUserRequest{}.Validate(), "empty update must be rejected")

	password := "sneaky"
	assert.Error(t, UpdateUserRequest{Password: &password}.Validate())

	badRole := "superuser"
	assert.Error(t, UpdateUserRequest{Role: &badRole}.Validate())

	badStatus := "banned"
	assert.Error(t, UpdateUserRequest{Status: &badStatus}.Validate())
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleAdmin.CanManageUsers())
	assert.False(t, RoleAdminFournisseur.CanManageUsers())
	assert.False(t, RolePharmacieStandard.CanManageUsers())

	assert.True(t, RoleHopital.Valid())
	assert.False(t, Role("superuser").Valid())
}
