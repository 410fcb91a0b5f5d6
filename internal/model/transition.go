package model

import "fmt"

// Party identifies which side of an order performs a transition. Buyer
// actions are scoped by user_id, seller actions by restaurant_id.
type Party string

const (
	PartyBuyer  Party = "buyer"
	PartySeller Party = "seller"
)

// Action is a status-changing request on an order.
type Action string

const (
	ActionCancel  Action = "cancel"
	ActionConfirm Action = "confirm"
	ActionDeliver Action = "deliver"
)

// HistoryEffect describes what a transition writes to the history projection.
type HistoryEffect int

const (
	HistoryNone   HistoryEffect = iota
	HistoryEnsure               // insert when absent, leave an existing row alone
	HistoryUpsert               // insert when absent, otherwise overwrite status
)

// Transition is one row of the order state machine.
type Transition struct {
	Party         Party
	Action        Action
	From          []OrderStatus
	To            OrderStatus
	History       HistoryEffect
	HistoryStatus HistoryStatus
}

type transitionKey struct {
	party  Party
	action Action
}

var transitions = map[transitionKey]Transition{
	{PartyBuyer, ActionCancel}: {
		Party: PartyBuyer, Action: ActionCancel,
		From:    []OrderStatus{OrderWaiting},
		To:      OrderCanceled,
		History: HistoryUpsert, HistoryStatus: HistoryCanceled,
	},
	// Buyer confirm acknowledges receipt and may skip confirmed/delivered.
	{PartyBuyer, ActionConfirm}: {
		Party: PartyBuyer, Action: ActionConfirm,
		From:    []OrderStatus{OrderWaiting, OrderConfirmed, OrderDelivered},
		To:      OrderFinished,
		History: HistoryUpsert, HistoryStatus: HistoryFinished,
	},
	{PartySeller, ActionConfirm}: {
		Party: PartySeller, Action: ActionConfirm,
		From:    []OrderStatus{OrderWaiting},
		To:      OrderConfirmed,
		History: HistoryEnsure, HistoryStatus: HistoryWaited,
	},
	{PartySeller, ActionDeliver}: {
		Party: PartySeller, Action: ActionDeliver,
		From: []OrderStatus{OrderWaiting, OrderConfirmed},
		To:   OrderDelivered,
	},
	{PartySeller, ActionCancel}: {
		Party: PartySeller, Action: ActionCancel,
		From: []OrderStatus{OrderWaiting, OrderConfirmed, OrderDelivered},
		To:   OrderCanceled,
	},
}

// LookupTransition returns the state machine row for party and action.
func LookupTransition(p Party, a Action) (Transition, bool) {
	t, ok := transitions[transitionKey{p, a}]
	return t, ok
}

// Allows reports whether the transition may start from s.
func (t Transition) Allows(s OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	for _, f := range t.From {
		if f == s {
			return true
		}
	}
	return false
}

// Rejection is the client-facing message when the order is in current.
func (t Transition) Rejection(current OrderStatus) string {
	if t.Party == PartyBuyer && t.Action == ActionConfirm {
		if current == OrderCanceled {
			return "Sorry, your order already cancel"
		}
		return fmt.Sprintf("Order already %s", current)
	}
	var verb string
	switch t.Action {
	case ActionCancel:
		verb = "canceled"
	case ActionConfirm:
		verb = "confirmed"
	case ActionDeliver:
		verb = "delivered"
	}
	return fmt.Sprintf("Order can't be %s, order already %s", verb, current)
}
