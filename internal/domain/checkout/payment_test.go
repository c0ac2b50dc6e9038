package checkout

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorStartsEmpty(t *testing.T) {
	var s Selector
	assert.Nil(t, s.Active())
	assert.Equal(t, MethodNone, s.Method())
}

func TestSwitchingAwayFromCashDiscardsReceived(t *testing.T) {
	var s Selector
	require.NoError(t, s.Select(MethodCash))
	s.Set(Cash{Received: dec("500")})

	require.NoError(t, s.Select(MethodBankTransfer))
	require.NoError(t, s.Select(MethodCash))
	cash, ok := s.Active().(Cash)
	require.True(t, ok)
	assert.True(t, cash.Received.IsZero())
}

func TestSelectUnknownMethod(t *testing.T) {
	var s Selector
	assert.ErrorIs(t, s.Select(Method("cheque")), ErrUnknownPaymentMethod)
	_, err := ParseMethod("bitcoin")
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)
	m, err := ParseMethod(" Card_Manual ")
	require.NoError(t, err)
	assert.Equal(t, MethodCardManual, m)
}

func TestPaymentValidation(t *testing.T) {
	total := dec("236")
	cases := []struct {
		name    string
		payment Payment
		want    error
	}{
		{"cash exact", Cash{Received: dec("236")}, nil},
		{"cash short", Cash{Received: dec("235.99")}, ErrInsufficientCash},
		{"terminal authorized", Card{Mode: CardTerminal, AuthorizationCode: "A1B2C3"}, nil},
		{"terminal pending", Card{Mode: CardTerminal}, ErrCardNotAuthorized},
		{"manual complete", Card{Mode: CardManual, Last4: "4242", HolderName: "Juan Pérez", Expiry: "08/28", AuthorizationCode: "998877"}, nil},
		{"manual bad expiry", Card{Mode: CardManual, Last4: "4242", HolderName: "Juan", Expiry: "13/28", AuthorizationCode: "1"}, ErrCardDetailsRequired},
		{"manual short digits", Card{Mode: CardManual, Last4: "42", HolderName: "Juan", Expiry: "01/28", AuthorizationCode: "1"}, ErrCardDetailsRequired},
		{"transfer ok", BankTransfer{ReferenceNumber: "TRX-1", TransferAmount: dec("236")}, nil},
		{"transfer no ref", BankTransfer{TransferAmount: dec("300")}, ErrTransferReferenceRequired},
		{"transfer short", BankTransfer{ReferenceNumber: "TRX-1", TransferAmount: dec("200")}, ErrTransferInsufficient},
		{"credit with customer", Credit{CustomerID: "c1", CustomerName: "Ana"}, nil},
		{"credit without customer", Credit{}, ErrCustomerRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.payment.Validate(total)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
			_, ok := IsValidation(err)
			assert.True(t, ok)
		})
	}
}

func TestCardModesShareWireMethod(t *testing.T) {
	assert.Equal(t, WireCard, Card{Mode: CardTerminal}.WireMethod())
	assert.Equal(t, WireCard, Card{Mode: CardManual}.WireMethod())
	assert.Equal(t, MethodCardManual, Card{Mode: CardManual}.Method())
}

func TestSelectorJSONRoundTrip(t *testing.T) {
	var s Selector
	s.Set(BankTransfer{ReferenceNumber: "REF-9", TransferAmount: dec("100.5")})
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"bank_transfer","transfer":{"referenceNumber":"REF-9","transferAmount":100.5}}`, string(raw))

	var back Selector
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, MethodBankTransfer, back.Method())

	var empty Selector
	require.NoError(t, json.Unmarshal([]byte(`{"method":""}`), &empty))
	assert.Nil(t, empty.Active())
}

func TestSimulatedTerminal(t *testing.T) {
	term := NewSimulatedTerminal(0)
	var steps []TerminalStep
	res, err := term.Authorize(context.Background(), dec("236"), func(s TerminalStep) { steps = append(steps, s) })
	require.NoError(t, err)

	assert.Equal(t, []TerminalStep{StepConnecting, StepReading, StepAuthorizing, StepApproved}, steps)
	assert.Len(t, res.Last4, 4)
	assert.Len(t, res.AuthorizationCode, 6)
}

func TestSimulatedTerminalHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSimulatedTerminal(time.Second).Authorize(ctx, dec("10"), nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewSimulatedTerminal(0).Authorize(context.Background(), dec("0"), nil)
	assert.Error(t, err)
}
