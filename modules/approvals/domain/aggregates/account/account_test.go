package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
)

func TestNew_FormatsBareTaxID(t *testing.T) {
	a := account.New(" Account Seed ", "94984296000176")

	assert.Equal(t, "Account Seed", a.Name())
	assert.Equal(t, "94.984.296/0001-76", a.TaxID())
	assert.True(t, a.Active())
	require.NoError(t, a.Validate())
}

func TestValidate(t *testing.T) {
	err := account.New("", "11.222.333/0001-82").Validate()
	require.Error(t, err)
	assert.Equal(t, "Name can't be blank, Tax id is invalid", err.Error())

	err = account.New("Acme", "").Validate()
	require.Error(t, err)
	assert.Equal(t, "Tax id can't be blank", err.Error())
}
