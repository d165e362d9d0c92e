package main

import (
	"fmt"
	"log"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario describes the sectors created at startup
type Scenario struct {
	Sectors []SectorSpec `yaml:"sectors"`
}

// SectorSpec lists what one sector starts with
type SectorSpec struct {
	Name   string      `yaml:"name"`
	Seed   int64       `yaml:"seed"`
	Fields []FieldSpec `yaml:"asteroid_fields"`
	Ships  []ShipSpec  `yaml:"ships"`
}

// FieldSpec scatters asteroids uniformly over a disc. Size 0 keeps the
// randomized default radius.
type FieldSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Spread float64 `yaml:"spread"`
	Count  int     `yaml:"count"`
	Visual int     `yaml:"visual"`
	Size   float64 `yaml:"size"`
}

// ShipSpec places a drifting ship
type ShipSpec struct {
	Name string  `yaml:"name"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	VX   float64 `yaml:"vx"`
	VY   float64 `yaml:"vy"`
	Hull float64 `yaml:"hull"`
}

// LoadScenario reads and validates a scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate rejects values that would spawn broken objects
func (sc *Scenario) Validate() error {
	for i, sec := range sc.Sectors {
		total := len(sec.Ships)
		for j, f := range sec.Fields {
			if f.Count < 0 || f.Visual < 0 || f.Spread < 0 {
				return fmt.Errorf("sector %d field %d: negative count or spread", i, j)
			}
			if f.Size < 0 || f.Size > AsteroidMaxSize || math.IsNaN(f.Size) {
				return fmt.Errorf("sector %d field %d: %w", i, j, ErrInvalidSize)
			}
			total += f.Count + f.Visual
		}
		if total > maxObjectsPerSector {
			return fmt.Errorf("sector %d: %d objects: %w", i, total, ErrSectorFull)
		}
		for j, s := range sec.Ships {
			if s.Hull < 0 {
				return fmt.Errorf("sector %d ship %d: negative hull", i, j)
			}
		}
	}
	return nil
}

// Apply spawns the spec's contents into sec and returns how many objects
// joined it. Objects refused by a full sector are not counted.
func (spec SectorSpec) Apply(sec *Sector) (int, error) {
	spawned := 0
	err := sec.Spawn(func(svc Services) error {
		r := svc.rng()
		for _, f := range spec.Fields {
			for i := 0; i < f.Count+f.Visual; i++ {
				var a *Asteroid
				if i < f.Count {
					a = NewAsteroid(svc)
				} else {
					a = NewVisualAsteroid(svc)
				}
				if a.ID() == 0 {
					continue
				}
				angle := r.Float64() * 2 * math.Pi
				dist := f.Spread * math.Sqrt(r.Float64())
				a.SetPosition(f.X+math.Cos(angle)*dist, f.Y+math.Sin(angle)*dist)
				if f.Size != 0 {
					if err := a.SetSize(f.Size); err != nil {
						log.Printf("sector %s: asteroid %d: %v", sec.ID, a.ID(), err)
					}
				}
				spawned++
			}
		}
		for _, s := range spec.Ships {
			ship := NewShip(svc, s.Name, s.Hull)
			if ship.ID() == 0 {
				continue
			}
			ship.SetPosition(s.X, s.Y)
			ship.SetVelocity(s.VX, s.VY)
			spawned++
		}
		return nil
	})
	return spawned, err
}
