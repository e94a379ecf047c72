package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/library_service/internal/model"
)

func Test_Member_CanSpend(t *testing.T) {
	member := model.Member{Credits: 15}

	assert.True(t, member.CanSpend(15))
	assert.True(t, member.CanSpend(10))
	assert.False(t, member.CanSpend(20))
	assert.False(t, member.CanSpend(-1))
}

func Test_Member_DisplayName(t *testing.T) {
	assert.Equal(t, "Ivan Petrov", (&model.Member{FirstName: "Ivan", LastName: "Petrov"}).DisplayName())
	assert.Equal(t, "Ivan", (&model.Member{FirstName: "Ivan"}).DisplayName())
}
