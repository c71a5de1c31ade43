package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterInputNormalize(t *testing.T) {
	in := RegisterInput{Nama: "  Budi  ", Email: " Budi@Example.COM ", Password: "rahasia", Role: ""}
	in.Normalize()

	assert.Equal(t, "Budi", in.Nama)
	assert.Equal(t, "budi@example.com", in.Email)
	assert.Equal(t, RoleUser, in.Role)
}

func TestRegisterInputValidate(t *testing.T) {
	valid := func() RegisterInput {
		return RegisterInput{Nama: "Budi", Email: "budi@example.com", Password: "rahasia", Role: RoleUser}
	}

	t.Run("ok", func(t *testing.T) {
		in := valid()
		require.NoError(t, in.Validate())
	})
	t.Run("admin role ok", func(t *testing.T) {
		in := valid()
		in.Role = RoleAdmin
		require.NoError(t, in.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		want   string
	}{
		{"missing name", func(in *RegisterInput) { in.Nama = "" }, "Nama wajib diisi"},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, "Email wajib diisi"},
		{"malformed email", func(in *RegisterInput) { in.Email = "not-an-email" }, "Email tidak valid"},
		{"short password", func(in *RegisterInput) { in.Password = "abc" }, "Password minimal 6 karakter"},
		{"unknown role", func(in *RegisterInput) { in.Role = "chef" }, "Role tidak dikenal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			err := in.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}
