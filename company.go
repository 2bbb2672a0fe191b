package treasury

import (
	"encoding/json"
	"fmt"

	"github.com/etnz/treasury/date"
)

// CompanyStats is the balance sheet of the treasury company on a day.
type CompanyStats struct {
	On                date.Date
	SharesOutstanding Quantity
	Cash              Money
	DebtFace          Money
	DebtMarket        Money // market value of the debt, face value when unknown
}

type jcompanyStats struct {
	On         date.Date `json:"on"`
	Shares     Quantity  `json:"shares"`
	Cash       Quantity  `json:"cash"`
	DebtFace   Quantity  `json:"debt_face"`
	DebtMarket *Quantity `json:"debt_market,omitempty"`
}

func (s CompanyStats) MarshalJSON() ([]byte, error) {
	market := Quantity{s.DebtMarket.value}
	return json.Marshal(jcompanyStats{
		On:         s.On,
		Shares:     s.SharesOutstanding,
		Cash:       Quantity{s.Cash.value},
		DebtFace:   Quantity{s.DebtFace.value},
		DebtMarket: &market,
	})
}

func (s *CompanyStats) UnmarshalJSON(b []byte) error {
	var j jcompanyStats
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	*s = CompanyStats{
		On:                j.On,
		SharesOutstanding: j.Shares,
		Cash:              USD(j.Cash.value),
		DebtFace:          USD(j.DebtFace.value),
		DebtMarket:        USD(j.DebtFace.value),
	}
	if j.DebtMarket != nil {
		s.DebtMarket = USD(j.DebtMarket.value)
	}
	return nil
}

// Validate checks the figures make sense.
func (s CompanyStats) Validate() error {
	if s.On.IsZero() {
		return fmt.Errorf("company stats have no date")
	}
	if !s.SharesOutstanding.IsPositive() {
		return fmt.Errorf("company stats on %v: shares outstanding must be positive, got %v", s.On, s.SharesOutstanding)
	}
	if s.Cash.IsNegative() || s.DebtFace.IsNegative() || s.DebtMarket.IsNegative() {
		return fmt.Errorf("company stats on %v: cash and debt must not be negative", s.On)
	}
	return nil
}
