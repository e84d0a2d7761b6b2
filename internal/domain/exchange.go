package domain

type ExchangeState string

const (
	ExchangeIdle              ExchangeState = "idle"
	ExchangeSending           ExchangeState = "sending"
	ExchangeFulfilled         ExchangeState = "fulfilled"
	ExchangeFallbackCompleted ExchangeState = "fallback_completed"
)

func (s ExchangeState) Terminal() bool {
	return s == ExchangeFulfilled || s == ExchangeFallbackCompleted
}
