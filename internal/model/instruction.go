package model

import (
	"strconv"

	"main/internal/model/enum"
)

// TradeInstruction is the unit passed from strategy to execution. Entry
// instructions open a position on the given side; exit instructions carry the
// flipped side of the position being closed.
type TradeInstruction struct {
	Asset          enum.Asset
	Duration       enum.DurationClass
	Exit           bool
	Side           enum.Side
	PriceHintCents int64
	SizeDollars    int64
}

// Ticker renders a human-readable instrument tag for logs and the journal.
func (ti TradeInstruction) Ticker() string {
	buf := make([]byte, 0, 16)
	buf = append(buf, ti.Asset.Name()...)
	buf = append(buf, '-')
	buf = append(buf, ti.Duration.Name()...)
	if ti.Exit {
		buf = append(buf, "-EXIT"...)
	}
	return string(buf)
}

// AppendPriceHint renders the fixed-point price hint as a dollar string.
func (ti TradeInstruction) AppendPriceHint(buf []byte) []byte {
	cents := ti.PriceHintCents
	if cents < 0 {
		buf = append(buf, '-')
		cents = -cents
	}
	buf = strconv.AppendInt(buf, cents/100, 10)
	buf = append(buf, '.')
	frac := cents % 100
	if frac < 10 {
		buf = append(buf, '0')
	}
	return strconv.AppendInt(buf, frac, 10)
}
