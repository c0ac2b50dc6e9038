package checkout

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TerminalStep is a stage reported by a card terminal while authorizing.
type TerminalStep string

const (
	StepConnecting  TerminalStep = "connecting"
	StepReading     TerminalStep = "reading"
	StepAuthorizing TerminalStep = "authorizing"
	StepApproved    TerminalStep = "approved"
)

// TerminalResult is what an approved terminal authorization yields.
type TerminalResult struct {
	Last4             string `json:"cardLast4"`
	AuthorizationCode string `json:"authorizationCode"`
}

// Terminal authorizes a card payment on a physical or simulated device.
type Terminal interface {
	Authorize(ctx context.Context, amount decimal.Decimal, progress func(TerminalStep)) (TerminalResult, error)
}

// SimulatedTerminal walks through the device steps with a fixed delay and
// always approves.
type SimulatedTerminal struct {
	StepDelay time.Duration
}

// NewSimulatedTerminal returns a simulated device.
func NewSimulatedTerminal(stepDelay time.Duration) *SimulatedTerminal {
	return &SimulatedTerminal{StepDelay: stepDelay}
}

func (t *SimulatedTerminal) Authorize(ctx context.Context, amount decimal.Decimal, progress func(TerminalStep)) (TerminalResult, error) {
	if !amount.IsPositive() {
		return TerminalResult{}, invalid("total", "El monto a cobrar debe ser mayor que cero")
	}
	if progress == nil {
		progress = func(TerminalStep) {}
	}
	for _, step := range []TerminalStep{StepConnecting, StepReading, StepAuthorizing} {
		progress(step)
		if err := t.wait(ctx); err != nil {
			return TerminalResult{}, err
		}
	}
	progress(StepApproved)
	return TerminalResult{
		Last4:             fmt.Sprintf("%04d", rand.IntN(10000)),
		AuthorizationCode: strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6]),
	}, nil
}

func (t *SimulatedTerminal) wait(ctx context.Context) error {
	if t.StepDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(t.StepDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
