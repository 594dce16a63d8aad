package request

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/careerexpo/exhibition-api/internal/domain"
)

const dateLayout = "2006-01-02"

var kinds = []interface{}{domain.KindUniversity, domain.KindSchool, domain.KindProvider}

var errNegativeAmount = errors.New("must not be negative")

func nonNegative(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if ok && d.IsNegative() {
		return errNegativeAmount
	}

	return nil
}
