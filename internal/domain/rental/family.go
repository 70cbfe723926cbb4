package rental

// Family plugs rental analysis into the calculator registry.
type Family struct{}

func (Family) DealType() string { return DealType }

func (Family) Validate(in RentalInputs) (ValidatedInputs, error) { return Validate(in) }

func (Family) Calculate(v ValidatedInputs) RentalResults { return Calculate(v) }
