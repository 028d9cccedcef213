package execution

import (
	"strings"

	"main/internal/model"
	"main/internal/model/enum"
)

// ResolveToken picks the outcome token matching a side. Upstream market
// metadata is not uniform, so resolution degrades gracefully: exact label
// match first, then a synonym match (Up/Yes, Down/No), then a positional
// fallback (index 0 is the positive outcome) when labels are unrecognized.
func ResolveToken(m model.Market, side enum.Side) (tokenID, outcome string, ok bool) {
	if !side.IsAvailable() || len(m.TokenIDs) < 2 {
		return "", "", false
	}

	want := strings.ToLower(side.Name())
	for i, label := range m.Outcomes {
		if i >= len(m.TokenIDs) {
			break
		}
		if strings.ToLower(strings.TrimSpace(label)) == want && m.TokenIDs[i] != "" {
			return m.TokenIDs[i], label, true
		}
	}

	synonym := "yes"
	if side == enum.SideDown {
		synonym = "no"
	}
	for i, label := range m.Outcomes {
		if i >= len(m.TokenIDs) {
			break
		}
		if strings.ToLower(strings.TrimSpace(label)) == synonym && m.TokenIDs[i] != "" {
			return m.TokenIDs[i], label, true
		}
	}

	idx := 0
	if side == enum.SideDown {
		idx = 1
	}
	if idx < len(m.TokenIDs) && m.TokenIDs[idx] != "" {
		label := ""
		if idx < len(m.Outcomes) {
			label = m.Outcomes[idx]
		}
		return m.TokenIDs[idx], label, true
	}
	return "", "", false
}
