package entity

type Service struct {
	Base
	Name        string  `db:"name"`
	Description string  `db:"description"`
	Price       float64 `db:"price"`
	// Extra commission percentage charged on top of the billing
	// commission for this service.
	AddOnCommissionRate float64 `db:"add_on_commission_rate"`
	Active              bool    `db:"active"`
}
