package core_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equilobe/library-go/library/shared/core"
)

func Test_ParseQualityState(t *testing.T) {
	state, err := core.ParseQualityState("likenew")
	require.NoError(t, err)
	assert.Equal(t, core.QualityLikeNew, state)

	state, err = core.ParseQualityState(" Damaged ")
	require.NoError(t, err)
	assert.Equal(t, core.QualityDamaged, state)

	_, err = core.ParseQualityState("mint")
	assert.ErrorIs(t, err, core.ErrUnknownQualityState)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func Test_QualityStates_AreStrictlyOrdered(t *testing.T) {
	states := core.QualityStates()

	for i := 1; i < len(states); i++ {
		assert.Equal(t, 1, core.QualityDelta(states[i], states[i-1]), "%s should be one grade worse than %s", states[i], states[i-1])
	}

	assert.Equal(t, 3, core.QualityDelta(core.QualityWorn, core.QualityLikeNew))
	assert.Equal(t, -5, core.QualityDelta(core.QualityNew, core.QualityDamaged))
}

func Test_QualityState_TextRoundTrip(t *testing.T) {
	text, err := core.QualityFair.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Fair", string(text))

	var parsed core.QualityState
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, core.QualityFair, parsed)

	_, err = core.QualityState(-1).MarshalText()
	assert.ErrorIs(t, err, core.ErrUnknownQualityState)
}

func Test_NewMoney(t *testing.T) {
	money, err := core.NewMoney(decimal.RequireFromString("2.5"), core.CurrencyRON)
	require.NoError(t, err)
	assert.Equal(t, "2.50 RON", money.String())
	assert.True(t, money.Equal(core.Money{Amount: decimal.RequireFromString("2.50"), Currency: core.CurrencyRON}))

	_, err = core.NewMoney(decimal.RequireFromString("-1"), core.CurrencyRON)
	assert.ErrorIs(t, err, core.ErrNegativeAmount)

	_, err = core.NewMoney(decimal.RequireFromString("1"), core.Currency("XYZ"))
	assert.ErrorIs(t, err, core.ErrUnknownCurrency)
}

func Test_ParseCurrency(t *testing.T) {
	currency, err := core.ParseCurrency("eur")
	require.NoError(t, err)
	assert.Equal(t, core.CurrencyEUR, currency)

	_, err = core.ParseCurrency("BTC")
	assert.ErrorIs(t, err, core.ErrUnknownCurrency)
}

func Test_DecisionResult(t *testing.T) {
	idempotent := core.IdempotentDecision()
	assert.True(t, idempotent.IsIdempotent())
	assert.False(t, idempotent.HasStateChange())
	assert.NoError(t, idempotent.HasError())

	success := core.SuccessDecision(core.BookRemoved{})
	assert.True(t, success.HasStateChange())
	assert.NotNil(t, success.Event)

	failed := core.ErrorDecision(core.ErrBookNotAvailable)
	assert.False(t, failed.HasStateChange())
	assert.ErrorIs(t, failed.HasError(), core.ErrBookNotAvailable)
}
