package farm

import (
	"errors"
	"fmt"
)

// IntentType names a user action.
type IntentType string

const (
	IntentSelectTool IntentType = "select_tool"
	IntentClickPlot  IntentType = "click_plot"
	IntentBuy        IntentType = "buy"
	IntentSell       IntentType = "sell"
	IntentProcess    IntentType = "process"
	IntentAttack     IntentType = "attack"
	IntentConsult    IntentType = "consult" // Asynchronous; see Farm.Consult
)

// Intent is a user action forwarded by the presentation layer.
type Intent struct {
	Type   IntentType `json:"type"`
	Plot   int        `json:"plot,omitempty"`
	Item   string     `json:"item,omitempty"`
	Input  string     `json:"input,omitempty"`
	Output string     `json:"output,omitempty"`
}

// Signal tells the presentation layer to do something no state captures.
type Signal string

const (
	SignalNone           Signal = ""
	SignalOpenProcessing Signal = "open_processing"
)

// Outcome reports what an intent did.
type Outcome struct {
	Applied bool   `json:"applied"`
	Signal  Signal `json:"signal,omitempty"`
	Reason  string `json:"reason,omitempty"` // Why nothing changed
}

func rejected(reason string) Outcome {
	return Outcome{Reason: reason}
}

var (
	// ErrUnknownIntent is returned for intent types Dispatch does not handle.
	ErrUnknownIntent = errors.New("unknown intent type")
)

// validate checks intent shape and item references before any state is
// touched.
func (f *Farm) validate(in Intent) error {
	switch in.Type {
	case IntentSelectTool:
		if in.Item == "" {
			return nil
		}
		_, err := f.cat.Lookup(in.Item)
		return err
	case IntentClickPlot, IntentAttack:
		return nil
	case IntentBuy, IntentSell:
		_, err := f.cat.Lookup(in.Item)
		return err
	case IntentProcess:
		if _, err := f.cat.Lookup(in.Input); err != nil {
			return err
		}
		_, err := f.cat.Lookup(in.Output)
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownIntent, in.Type)
}

func (t *txn) dispatch(in Intent) Outcome {
	switch in.Type {
	case IntentSelectTool:
		return t.selectTool(in.Item)
	case IntentClickPlot:
		return t.clickPlot(in.Plot)
	case IntentBuy:
		return t.buy(in.Item)
	case IntentSell:
		return t.sell(in.Item)
	case IntentProcess:
		return t.process(in.Input, in.Output)
	case IntentAttack:
		return t.attack()
	}
	return rejected("unknown intent")
}
