package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Position is one holding in a portfolio. Positions are carried as opaque
// payload; nothing here trades them.
type Position struct {
	Symbol     string    `json:"symbol"`
	Quantity   int64     `json:"quantity"`
	OpenPrice  float64   `json:"open_price"`
	ClosePrice float64   `json:"close_price,omitempty"`
	OpenedAt   time.Time `json:"opened_at"`
	ClosedAt   time.Time `json:"closed_at,omitzero"`
	IsOpen     bool      `json:"is_open"`
}

type Portfolio struct {
	OpenPositions   []Position `json:"open_positions"`
	PositionHistory []Position `json:"position_history"`
}

// NewPortfolio returns an empty portfolio whose slices encode as [] rather
// than null.
func NewPortfolio() Portfolio {
	return Portfolio{OpenPositions: []Position{}, PositionHistory: []Position{}}
}

// MarshalBinary encodes the portfolio as JSON so it can travel as a frame
// field.
func (p Portfolio) MarshalBinary() ([]byte, error) {
	if p.OpenPositions == nil {
		p.OpenPositions = []Position{}
	}
	if p.PositionHistory == nil {
		p.PositionHistory = []Position{}
	}
	return json.Marshal(p)
}

func (p *Portfolio) UnmarshalBinary(data []byte) error {
	var out Portfolio
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("decode portfolio: %w", err)
	}
	*p = out
	return nil
}

// Empty reports whether the portfolio holds no positions.
func (p Portfolio) Empty() bool {
	return len(p.OpenPositions) == 0 && len(p.PositionHistory) == 0
}

// MarshalPositions encodes a transaction log for storage.
func MarshalPositions(ps []Position) ([]byte, error) {
	if ps == nil {
		ps = []Position{}
	}
	return json.Marshal(ps)
}
