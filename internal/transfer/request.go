package transfer

import "github.com/shopspring/decimal"

// Request is a validated transfer intent. The two concrete kinds are Send
// and Charge; the boundary layer decodes the wire shape into one of them
// before anything reaches the engine, so the engine never sees an untagged
// transaction object.
type Request interface {
	amount() decimal.Decimal
}

// Send debits the actor and credits the account behind RecipientEmail.
type Send struct {
	Amount         decimal.Decimal
	RecipientEmail string
	Description    string
}

func (s Send) amount() decimal.Decimal { return s.Amount }

// Charge credits the actor's own account. No external payment authorization
// is modeled; card details never reach the engine.
type Charge struct {
	Amount      decimal.Decimal
	Description string
}

func (c Charge) amount() decimal.Decimal { return c.Amount }
