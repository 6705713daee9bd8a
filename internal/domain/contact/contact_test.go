package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContact(t *testing.T) {
	tests := []struct {
		name      string
		first     string
		email     string
		phone     string
		wantErr   string
		wantEmail string
		wantPhone string
	}{
		{name: "email only", first: "Dana", email: " Dana@Example.COM ", wantEmail: "dana@example.com"},
		{name: "phone only", first: "Yossi", phone: "054-123 4567", wantPhone: "0541234567"},
		{name: "international phone", first: "Noa", phone: "+972 (54) 123-4567", wantPhone: "+972541234567"},
		{name: "missing first name", email: "a@b.co", wantErr: "first name is required"},
		{name: "no channel", first: "Avi", wantErr: "email or phone is required"},
		{name: "bad email", first: "Avi", email: "avi@", wantErr: "invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContact(tt.first, "Levi", tt.email, tt.phone, "website")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, c.Email())
			assert.Equal(t, tt.wantPhone, c.Phone())
			assert.Equal(t, StatusLead, c.Status())
			assert.Equal(t, "website", c.Source())
		})
	}
}

func TestContact_SetTags(t *testing.T) {
	c, err := NewContact("Dana", "", "dana@example.com", "", "")
	require.NoError(t, err)

	require.NoError(t, c.SetTags([]string{"VIP", " vip ", "", "python", "Python"}))
	assert.Equal(t, []string{"VIP", "python"}, c.Tags())

	many := make([]string, 0, 21)
	for i := range 21 {
		many = append(many, string(rune('a'+i)))
	}
	assert.Error(t, c.SetTags(many))
}

func TestContact_MarkCustomer(t *testing.T) {
	c, err := NewContact("Dana", "", "dana@example.com", "", "")
	require.NoError(t, err)

	assert.True(t, c.MarkCustomer())
	assert.False(t, c.MarkCustomer())
	assert.Equal(t, StatusCustomer, c.Status())

	assert.Error(t, c.ChangeStatus("vip"))
	require.NoError(t, c.ChangeStatus(StatusInactive))
	assert.Equal(t, StatusInactive, c.Status())
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "", NormalizePhone("+"))
	assert.Equal(t, "", NormalizePhone("  "))
	assert.Equal(t, "0501234567", NormalizePhone("050+123+4567"))
}
