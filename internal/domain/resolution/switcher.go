package resolution

import (
	"strings"
	"time"
)

// Classification labels a customer's overall cross-channel behavior.
type Classification string

const (
	ClassifiedDirectOnly      Classification = "direct_only"
	ClassifiedMarketplaceOnly Classification = "marketplace_only"
	ClassifiedRetailOnly      Classification = "retail_only"
	ClassifiedSwitched        Classification = "switched"
	ClassifiedMixed           Classification = "mixed"
	ClassifiedInactive        Classification = "inactive"
)

// ChannelSwitch records one detected migration between two channels:
// every order on the origin channel predates every order on the
// destination channel.
type ChannelSwitch struct {
	From Channel
	To   Channel

	// SwitchDate is the first order date on the destination channel.
	SwitchDate time.Time

	// LastFromOrder is the final order date on the origin channel.
	LastFromOrder time.Time

	// GapDays is the whole number of days between the last origin order
	// and the first destination order, rounded down.
	GapDays int
}

// DetectSwitches evaluates every ordered pair of active channels and
// returns the migrations found. A pair counts as a switch only when the
// origin channel's last order strictly predates the destination channel's
// first order, which means overlapping activity never reads as a switch.
func DetectSwitches(profile *CustomerProfile) []ChannelSwitch {
	var switches []ChannelSwitch
	for _, from := range Channels {
		fromHist := profile.History(from)
		if !fromHist.HasOrders() || fromHist.Last == nil {
			continue
		}
		for _, to := range Channels {
			if to == from {
				continue
			}
			toHist := profile.History(to)
			if !toHist.HasOrders() || toHist.First == nil {
				continue
			}
			if !fromHist.Last.Before(*toHist.First) {
				continue
			}
			switches = append(switches, ChannelSwitch{
				From:          from,
				To:            to,
				SwitchDate:    *toHist.First,
				LastFromOrder: *fromHist.Last,
				GapDays:       wholeDaysBetween(*fromHist.Last, *toHist.First),
			})
		}
	}
	return switches
}

// ClassifyProfile labels the customer: single-channel when only one known
// channel saw orders, switched when any channel fully predates another,
// mixed when multiple channels interleave in time.
func ClassifyProfile(profile *CustomerProfile) Classification {
	active := profile.ActiveChannels()
	switch len(active) {
	case 0:
		return ClassifiedInactive
	case 1:
		switch active[0] {
		case ChannelDirect:
			return ClassifiedDirectOnly
		case ChannelMarketplace:
			return ClassifiedMarketplaceOnly
		case ChannelRetail:
			return ClassifiedRetailOnly
		}
	}
	if len(DetectSwitches(profile)) > 0 {
		return ClassifiedSwitched
	}
	return ClassifiedMixed
}

// SwitcherKey builds the dedup key for a reported switcher: the origin
// customer identifier plus the normalized destination address and city.
// The same customer switching at the same location is reported once even
// when several destination records share that address.
func SwitcherKey(customerID, address, city string) string {
	return strings.Join([]string{
		strings.TrimSpace(customerID),
		NormalizeAddress(address),
		NormalizeCity(city),
	}, "|")
}

func wholeDaysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
