package main

// DamageType classifies incoming damage
type DamageType int

const (
	DamageKinetic DamageType = iota
)

func (t DamageType) String() string {
	switch t {
	case DamageKinetic:
		return "kinetic"
	}
	return "unknown"
}

// DamageInfo describes where damage came from. A zero Instigator means the
// damage is environmental with no attributable attacker.
type DamageInfo struct {
	Instigator EntityID
	Type       DamageType
	X, Y       float64
}

// Environmental reports whether no object is credited with the damage
func (d DamageInfo) Environmental() bool {
	return d.Instigator == 0
}
