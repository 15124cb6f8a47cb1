package adapter

// Panasonic is a vendor adapter that uses the standard CiA-402 transition
// table and layout verbatim; only its identity matching differs from
// Standard. Kept as its own type (rather than reusing Standard directly) so
// the registry can distinguish it in logs and in Name().
type Panasonic struct {
	*Standard
}

// NewPanasonic builds the Panasonic adapter for the given identity.
func NewPanasonic(identity MotorIdentity) *Panasonic {
	return &Panasonic{Standard: NewStandard(identity)}
}

func (p *Panasonic) Name() string { return "panasonic" }
