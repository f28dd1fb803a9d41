package production_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/production"
)

func TestParseOrderQR(t *testing.T) {
	got, err := production.ParseOrderQR("!BSVPD!SOV240301!2!")
	require.NoError(t, err)
	assert.Equal(t, "SOV240301-2", got)
	assert.True(t, production.IsSalesOrderNo(got))

	for _, bad := range []string{"", "SOV240301-2", "!XXXX!SOV1!2!", "!BSVPD!SOV1!dos!", "!BSVPD!!2!"} {
		_, err := production.ParseOrderQR(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, bad)
	}
}

func TestOrderQR_IdaYVuelta(t *testing.T) {
	payload := production.OrderQR("SOV240301-7")
	assert.Equal(t, "!BSVPD!SOV240301!7!", payload)

	back, err := production.ParseOrderQR(payload)
	require.NoError(t, err)
	assert.Equal(t, "SOV240301-7", back)
}

func TestNormalizeSearch(t *testing.T) {
	assert.Equal(t, "công ty abc", production.NormalizeSearch("  CÔNG  TY \t ABC "))
}
