package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/colmado-pos/internal/domain/checkout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutCashSubmit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)
	queso := env.queso(t)
	uid := env.user.ID

	view, err := env.checkout.CreateSession(ctx, uid)
	require.NoError(t, err)
	id := view.Session.ID
	assert.True(t, view.Session.ApplyTax)
	assert.False(t, view.CanSubmit)

	_, err = env.checkout.AddLine(ctx, uid, id, &AddLineInput{Code: "7460001", Quantity: 2})
	require.NoError(t, err)
	_, err = env.checkout.AddLine(ctx, uid, id, &AddLineInput{ProductID: &pan.ID})
	require.NoError(t, err)
	view, err = env.checkout.AddLine(ctx, uid, id, &AddLineInput{ProductID: &queso.ID, Weight: dec("0.5")})
	require.NoError(t, err)

	require.Len(t, view.Session.Cart.Lines, 2)
	assert.Equal(t, 3, view.Session.Cart.Lines[0].Quantity)
	// 75 + 90 = 165, ITBIS 29.70
	assert.True(t, dec("194.7").Equal(view.Totals.Total), view.Totals.Total.String())

	view, err = env.checkout.SelectPayment(ctx, uid, id, &SelectPaymentInput{Method: "cash", Received: "150"})
	require.NoError(t, err)
	assert.False(t, view.CanSubmit)

	// a rejected submission keeps the sale
	_, err = env.checkout.Submit(ctx, uid, id)
	requireAppError(t, err, http.StatusUnprocessableEntity)
	view, err = env.checkout.GetSession(ctx, uid, id)
	require.NoError(t, err)
	assert.Len(t, view.Session.Cart.Lines, 2)

	view, err = env.checkout.SetCashReceived(ctx, uid, id, "200")
	require.NoError(t, err)
	assert.True(t, view.CanSubmit)
	assert.True(t, dec("5.3").Equal(view.Totals.Change))

	preview, err := env.checkout.Preview(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, "FAC-202610-----", preview.ReceiptNumber)

	inv, err := env.checkout.Submit(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, "FAC-202610-0001", inv.ReceiptNumber)
	assert.Len(t, inv.Items, 2)
	assert.True(t, dec("7").Equal(env.stock(t, pan.ID)))
	assert.True(t, dec("4.5").Equal(env.stock(t, queso.ID)))

	_, err = env.checkout.GetSession(ctx, uid, id)
	requireAppError(t, err, http.StatusNotFound)
	assert.Equal(t, 0, env.sessions.Len())
}

func TestCheckoutLineEditing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)
	queso := env.queso(t)
	uid := env.user.ID

	view, err := env.checkout.CreateSession(ctx, uid)
	require.NoError(t, err)
	id := view.Session.ID

	_, err = env.checkout.AddLine(ctx, uid, id, &AddLineInput{ProductID: &queso.ID})
	requireAppError(t, err, http.StatusUnprocessableEntity)
	_, err = env.checkout.AddLine(ctx, uid, id, &AddLineInput{Code: "no-existe"})
	requireAppError(t, err, http.StatusNotFound)
	_, err = env.checkout.AddLine(ctx, uid, id, &AddLineInput{})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	view, err = env.checkout.AddLine(ctx, uid, id, &AddLineInput{ProductID: &pan.ID, Quantity: 2})
	require.NoError(t, err)
	unitLine := view.Session.Cart.Lines[0].ID
	view, err = env.checkout.AddLine(ctx, uid, id, &AddLineInput{ProductID: &queso.ID, Weight: dec("1")})
	require.NoError(t, err)
	weightLine := view.Session.Cart.Lines[1].ID

	five := 5
	view, err = env.checkout.UpdateLine(ctx, uid, id, unitLine, &UpdateLineInput{Quantity: &five})
	require.NoError(t, err)
	assert.Equal(t, 5, view.Session.Cart.Lines[0].Quantity)

	w := dec("2")
	view, err = env.checkout.UpdateLine(ctx, uid, id, weightLine, &UpdateLineInput{Weight: &w})
	require.NoError(t, err)
	assert.True(t, dec("485").Equal(view.Totals.Subtotal))

	view, err = env.checkout.SetTax(ctx, uid, id, false)
	require.NoError(t, err)
	assert.True(t, view.Totals.Tax.IsZero())

	view, err = env.checkout.RemoveLine(ctx, uid, id, weightLine)
	require.NoError(t, err)
	assert.Len(t, view.Session.Cart.Lines, 1)

	_, err = env.checkout.RemoveLine(ctx, uid, id, weightLine)
	requireAppError(t, err, http.StatusNotFound)

	zero := 0
	view, err = env.checkout.UpdateLine(ctx, uid, id, unitLine, &UpdateLineInput{Quantity: &zero})
	require.NoError(t, err)
	assert.Empty(t, view.Session.Cart.Lines)
}

func TestCheckoutSwitchingMethodDiscardsFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)
	uid := env.user.ID

	view, err := env.checkout.CreateSession(ctx, uid)
	require.NoError(t, err)
	id := view.Session.ID
	_, err = env.checkout.AddLine(ctx, uid, id, &AddLineInput{ProductID: &pan.ID})
	require.NoError(t, err)

	_, err = env.checkout.SelectPayment(ctx, uid, id, &SelectPaymentInput{Method: "bank_transfer", ReferenceNumber: "TR-991", TransferAmount: "29.50"})
	require.NoError(t, err)
	view, err = env.checkout.SelectPayment(ctx, uid, id, &SelectPaymentInput{Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, checkout.MethodCash, view.Session.Payment.Method())
	assert.False(t, view.CanSubmit)

	view, err = env.checkout.SelectPayment(ctx, uid, id, &SelectPaymentInput{Method: "bank_transfer"})
	require.NoError(t, err)
	transfer, ok := view.Session.Payment.Active().(checkout.BankTransfer)
	require.True(t, ok)
	assert.Empty(t, transfer.ReferenceNumber)

	_, err = env.checkout.SelectPayment(ctx, uid, id, &SelectPaymentInput{Method: "bitcoin"})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	_, err = env.checkout.SetCashReceived(ctx, uid, id, "100")
	requireAppError(t, err, http.StatusUnprocessableEntity)
}

func TestCheckoutTerminalCard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)
	uid := env.user.ID

	view, err := env.checkout.CreateSession(ctx, uid)
	require.NoError(t, err)
	id := view.Session.ID
	_, err = env.checkout.AddLine(ctx, uid, id, &AddLineInput{ProductID: &pan.ID})
	require.NoError(t, err)

	_, err = env.checkout.RunTerminal(ctx, uid, id, nil)
	requireAppError(t, err, http.StatusUnprocessableEntity)

	_, err = env.checkout.SelectPayment(ctx, uid, id, &SelectPaymentInput{Method: "card_terminal"})
	require.NoError(t, err)

	var steps []checkout.TerminalStep
	view, err = env.checkout.RunTerminal(ctx, uid, id, func(s checkout.TerminalStep) { steps = append(steps, s) })
	require.NoError(t, err)
	assert.Equal(t, []checkout.TerminalStep{checkout.StepConnecting, checkout.StepReading, checkout.StepAuthorizing, checkout.StepApproved}, steps)
	assert.True(t, view.CanSubmit)

	inv, err := env.checkout.Submit(ctx, uid, id)
	require.NoError(t, err)
	require.NotNil(t, inv.AuthorizationCode)
	require.NotNil(t, inv.CardNumber)
	assert.Len(t, *inv.CardNumber, len("**** **** **** 0000"))
}

func TestCheckoutCreditSubmit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pan := env.pan(t)
	c := env.customer(t, "0")
	uid := env.user.ID

	view, err := env.checkout.CreateSession(ctx, uid)
	require.NoError(t, err)
	id := view.Session.ID
	_, err = env.checkout.AddLine(ctx, uid, id, &AddLineInput{ProductID: &pan.ID, Quantity: 4})
	require.NoError(t, err)

	_, err = env.checkout.SetCreditCustomer(ctx, uid, id, c.ID)
	requireAppError(t, err, http.StatusUnprocessableEntity)

	view, err = env.checkout.SelectPayment(ctx, uid, id, &SelectPaymentInput{Method: "credit"})
	require.NoError(t, err)
	assert.False(t, view.CanSubmit)

	missing := uuid.New()
	_, err = env.checkout.SetCreditCustomer(ctx, uid, id, missing)
	requireAppError(t, err, http.StatusNotFound)

	view, err = env.checkout.SetCreditCustomer(ctx, uid, id, c.ID)
	require.NoError(t, err)
	assert.True(t, view.CanSubmit)

	inv, err := env.checkout.Submit(ctx, uid, id)
	require.NoError(t, err)
	assert.True(t, inv.IsCredit)
	assert.Equal(t, c.Name, inv.CustomerName)
	assert.True(t, dec("118").Equal(env.debt(t, c.ID)))
}

func TestCheckoutSessionsAreOwned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, err := env.checkout.CreateSession(ctx, env.user.ID)
	require.NoError(t, err)
	other := uuid.New()

	_, err = env.checkout.GetSession(ctx, other, view.Session.ID)
	requireAppError(t, err, http.StatusNotFound)
	requireAppError(t, env.checkout.Discard(ctx, other, view.Session.ID), http.StatusNotFound)

	require.NoError(t, env.checkout.Discard(ctx, env.user.ID, view.Session.ID))
	_, err = env.checkout.GetSession(ctx, env.user.ID, view.Session.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestCheckoutExpiredSessionReleasesLock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, err := env.checkout.CreateSession(ctx, env.user.ID)
	require.NoError(t, err)
	id := view.Session.ID

	_, err = env.checkout.SetTax(ctx, env.user.ID, id, false)
	require.NoError(t, err)
	_, held := env.checkout.locks.Load(id)
	require.True(t, held)

	// the store drops it as a TTL would
	require.NoError(t, env.sessions.Delete(ctx, id))

	_, err = env.checkout.SetTax(ctx, env.user.ID, id, true)
	requireAppError(t, err, http.StatusNotFound)
	_, held = env.checkout.locks.Load(id)
	assert.False(t, held)
}
