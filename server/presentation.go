package main

import "fmt"

// ModelRef names the mesh and textures used to draw an object
type ModelRef struct {
	Mesh     string `json:"mesh"`
	Diffuse  string `json:"diffuse"`
	Specular string `json:"specular"`
}

// ResourceCatalog resolves visual resources for a variant index
type ResourceCatalog interface {
	AsteroidModel(variant int) ModelRef
}

// DefaultCatalog uses the stock asteroid asset names
type DefaultCatalog struct{}

func (DefaultCatalog) AsteroidModel(variant int) ModelRef {
	return ModelRef{
		Mesh:     fmt.Sprintf("Astroid_%d.model", variant),
		Diffuse:  fmt.Sprintf("Astroid_%d_d.png", variant),
		Specular: fmt.Sprintf("Astroid_%d_s.png", variant),
	}
}

// RenderInfo is the read-only view handed to the presentation layer
type RenderInfo struct {
	X, Y     float64
	Rotation float64
	Depth    float64
	Radius   float64
	Variant  int
	Model    ModelRef
}

// Color is an RGB tint
type Color struct {
	R, G, B uint8
}

// AsteroidRadarTint is the blip color of hittable asteroids
var AsteroidRadarTint = Color{R: 255, G: 200, B: 100}

const minRadarBlipScale = 0.2

// RadarBlip describes how to draw an object on the radar
type RadarBlip struct {
	Rotation float64
	Scale    float64
	Tint     Color
}

// Presentation returns a consistent snapshot for rendering. The radius is
// resynced from size before it is read.
func (a *Asteroid) Presentation() RenderInfo {
	info := RenderInfo{
		X:        a.X,
		Y:        a.Y,
		Rotation: a.Rotation,
		Depth:    a.depth,
		Radius:   a.Radius(),
		Variant:  a.variant,
	}
	if a.svc.Catalog != nil {
		info.Model = a.svc.Catalog.AsteroidModel(a.variant)
	}
	return info
}

// SpinAngle is the cosmetic rotation after elapsed seconds
func (a *Asteroid) SpinAngle(elapsed float64) float64 {
	return elapsed * a.rotationSpeed
}

// RadarBlip sizes the radar sprite for a given map scale and sprite width.
// Visual asteroids do not show on radar.
func (a *Asteroid) RadarBlip(scale, textureWidth float64) (RadarBlip, bool) {
	if !a.hittable || textureWidth <= 0 {
		return RadarBlip{}, false
	}
	size := a.Radius() * scale / textureWidth * 2
	if size < minRadarBlipScale {
		size = minRadarBlipScale
	}
	return RadarBlip{Rotation: a.Rotation, Scale: size, Tint: AsteroidRadarTint}, true
}
