package models

// Signal is the evaluator's verdict for one symbol and horizon.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Horizon selects which evaluator produced an evaluation.
type Horizon string

const (
	HorizonShortTerm Horizon = "short_term"
	HorizonLongTerm  Horizon = "long_term"
)

// Evaluation is the immutable output of one evaluator run. It carries no
// identity and no timestamp: identical inputs always produce an identical
// Evaluation. Persistence identity is assigned by the repository layer.
type Evaluation struct {
	Symbol       string     `json:"symbol"`
	Horizon      Horizon    `json:"horizon"`
	Signal       Signal     `json:"signal"`
	Confidence   float64    `json:"confidence"` // 0-100
	Reasons      []string   `json:"reasons"`    // ordered, evaluation order
	NetScore     float64    `json:"net_score"`
	TotalWeight  float64    `json:"total_weight"`
	CurrentPrice *float64   `json:"current_price,omitempty"`
	BuyPrice     *float64   `json:"buy_price,omitempty"`
	CutLossPrice *float64   `json:"cut_loss_price,omitempty"`
	Consensus    *Consensus `json:"consensus,omitempty"`
}

// HoldEvaluation builds the degraded evaluation returned whenever an
// evaluator cannot run: HOLD with zero confidence and a single reason.
func HoldEvaluation(symbol string, horizon Horizon, reason string) Evaluation {
	return Evaluation{
		Symbol:     symbol,
		Horizon:    horizon,
		Signal:     SignalHold,
		Confidence: 0,
		Reasons:    []string{reason},
	}
}
