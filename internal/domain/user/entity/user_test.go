package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Lan Nguyễn", User{FirstName: "Lan", LastName: "Nguyễn", Username: "lan"}.DisplayName())
	assert.Equal(t, "Lan", User{FirstName: "Lan"}.DisplayName())
	assert.Equal(t, "lan99", User{Username: "lan99"}.DisplayName())
}

func TestTitleOnlyForEmployers(t *testing.T) {
	assert.Equal(t, "FPT", User{Role: RoleEmployer, CompanyName: "FPT"}.Title())
	assert.Empty(t, User{Role: RoleUser, CompanyName: "FPT"}.Title())
}

func TestVerified(t *testing.T) {
	assert.False(t, Stats{Posts: 5, Followers: 10}.Verified())
	assert.True(t, Stats{Posts: 6}.Verified())
	assert.True(t, Stats{Followers: 11}.Verified())
}
