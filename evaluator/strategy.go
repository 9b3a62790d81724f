package evaluator

import "vnsignal/models"

// SignalStrategy converts a net weighted score and confidence into a signal.
type SignalStrategy interface {
	DetermineSignal(netScore, confidence float64) models.Signal
	Name() string
}

// DefaultStrategy uses the standard ±15 thresholds.
type DefaultStrategy struct {
	BuyThreshold  float64
	SellThreshold float64
}

// NewDefaultStrategy creates a strategy with the standard thresholds.
func NewDefaultStrategy() *DefaultStrategy {
	return &DefaultStrategy{
		BuyThreshold:  15,
		SellThreshold: -15,
	}
}

func (s *DefaultStrategy) DetermineSignal(netScore, confidence float64) models.Signal {
	if netScore > s.BuyThreshold {
		return models.SignalBuy
	}
	if netScore < s.SellThreshold {
		return models.SignalSell
	}
	return models.SignalHold
}

func (s *DefaultStrategy) Name() string {
	return "default"
}

// ConservativeStrategy requires higher thresholds and minimum confidence.
type ConservativeStrategy struct {
	BuyThreshold  float64
	SellThreshold float64
	MinConfidence float64
}

// NewConservativeStrategy creates a conservative strategy with higher thresholds.
func NewConservativeStrategy() *ConservativeStrategy {
	return &ConservativeStrategy{
		BuyThreshold:  25,
		SellThreshold: -25,
		MinConfidence: 40,
	}
}

func (s *ConservativeStrategy) DetermineSignal(netScore, confidence float64) models.Signal {
	if confidence < s.MinConfidence {
		return models.SignalHold
	}
	if netScore > s.BuyThreshold {
		return models.SignalBuy
	}
	if netScore < s.SellThreshold {
		return models.SignalSell
	}
	return models.SignalHold
}

func (s *ConservativeStrategy) Name() string {
	return "conservative"
}

// CustomStrategy allows fully configurable thresholds.
type CustomStrategy struct {
	BuyThreshold  float64
	SellThreshold float64
	MinConfidence float64
}

// NewCustomStrategy creates a strategy with custom thresholds.
func NewCustomStrategy(buyThreshold, sellThreshold, minConfidence float64) *CustomStrategy {
	return &CustomStrategy{
		BuyThreshold:  buyThreshold,
		SellThreshold: sellThreshold,
		MinConfidence: minConfidence,
	}
}

func (s *CustomStrategy) DetermineSignal(netScore, confidence float64) models.Signal {
	if s.MinConfidence > 0 && confidence < s.MinConfidence {
		return models.SignalHold
	}
	if netScore > s.BuyThreshold {
		return models.SignalBuy
	}
	if netScore < s.SellThreshold {
		return models.SignalSell
	}
	return models.SignalHold
}

func (s *CustomStrategy) Name() string {
	return "custom"
}

// StrategyFromName returns a strategy by name.
func StrategyFromName(name string) SignalStrategy {
	switch name {
	case "conservative":
		return NewConservativeStrategy()
	default:
		return NewDefaultStrategy()
	}
}
