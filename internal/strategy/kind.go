package strategy

import (
	"strings"
)

// Kind identifies a policy.
type Kind string

const (
	KindScheduled        Kind = "scheduled"
	KindScheduledTune    Kind = "scheduled_tune"
	KindScheduledWindow  Kind = "scheduled_window"
	KindBuyAndHold       Kind = "buyandhold"
	KindBteScheduled     Kind = "bte_scheduled"
	KindAverageScheduled Kind = "bte_average_scheduled"
	KindGrid             Kind = "grid"
	KindIndicatorCross   Kind = "indicator_cross"
	KindIndicatorPoints  Kind = "indicator_points"
	KindTendency28       Kind = "bte_tendency28"
	KindBalance          Kind = "bte_balance"
	KindSellOnXIRR       Kind = "bte_scheduled_sell_on_xirr"
)

// AllKinds lists every supported policy in a stable order.
var AllKinds = []Kind{
	KindScheduled,
	KindScheduledTune,
	KindScheduledWindow,
	KindBuyAndHold,
	KindBteScheduled,
	KindAverageScheduled,
	KindGrid,
	KindIndicatorCross,
	KindIndicatorPoints,
	KindTendency28,
	KindBalance,
	KindSellOnXIRR,
}

var kindAliases = map[string]Kind{
	"average_scheduled": KindAverageScheduled,
	"tendency28":        KindTendency28,
	"balance":           KindBalance,
	"sell_on_xirr":      KindSellOnXIRR,
}

// ParseKind resolves a policy identifier. Matching is case-insensitive.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))

	for _, k := range AllKinds {
		if string(k) == s {
			return k, true
		}
	}

	k, ok := kindAliases[s]

	return k, ok
}

// EngineBacked reports whether the policy drives a cash constrained ledger.
// The scheduled family only accumulates shares.
func (k Kind) EngineBacked() bool {
	switch k {
	case KindScheduled, KindScheduledTune, KindScheduledWindow, KindBuyAndHold:
		return false
	default:
		return true
	}
}

// MultiInstrument reports whether the policy reads several series.
func (k Kind) MultiInstrument() bool {
	return k == KindTendency28 || k == KindBalance
}
