// Package pipeline chains the detection stages into a single run over a
// binary mask: foreground scan, component labeling, shape measurement,
// star selection, and quad generation.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"starquads/pkg/detect"
	"starquads/pkg/mask"
	"starquads/pkg/quads"
)

// ErrMissingMask is returned when Run is given a nil mask.
var ErrMissingMask = errors.New("pipeline: no input mask")

// InvalidParamError reports a parameter outside its valid range.
type InvalidParamError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("pipeline: invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

// Params controls star selection and quad generation.
type Params struct {
	// MaxStars caps the number of components kept after brightness
	// ranking.
	MaxStars int

	// MinDistancePercent is the minimum pairwise separation between
	// selected stars, as a percentage of width + height. Zero disables
	// the constraint.
	MinDistancePercent float64

	// KNeighbors is the number of nearest stars combined with each seed
	// when forming quads. Must be at least 3.
	KNeighbors int
}

// DefaultParams returns the settings used when nothing is configured.
func DefaultParams() Params {
	return Params{
		MaxStars:           50,
		MinDistancePercent: 0,
		KNeighbors:         5,
	}
}

func (p Params) validate() error {
	if p.MaxStars <= 0 {
		return &InvalidParamError{Field: "maxStars", Value: float64(p.MaxStars), Reason: "must be positive"}
	}
	if p.MinDistancePercent < 0 || p.MinDistancePercent > 100 {
		return &InvalidParamError{Field: "minDistancePercent", Value: p.MinDistancePercent, Reason: "must be in [0, 100]"}
	}
	if p.KNeighbors < 3 {
		return &InvalidParamError{Field: "kNeighbors", Value: float64(p.KNeighbors), Reason: "quads need at least 3 neighbors"}
	}
	return nil
}

// Result carries the output of one pipeline run.
type Result struct {
	Width           int                 `json:"width"`
	Height          int                 `json:"height"`
	TotalComponents int                 `json:"totalComponents"`
	Stars           []detect.Properties `json:"stars"`
	SeedQuads       []quads.SeedQuad    `json:"seedQuads"`
	QuadCount       int                 `json:"quadCount"`
}

// Pipeline runs the detection stages with fixed parameters. It carries
// no per-run state and is safe for reuse across masks.
type Pipeline struct {
	params Params
	log    zerolog.Logger
}

// New validates the parameters and builds a pipeline.
func New(params Params, log zerolog.Logger) (*Pipeline, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &Pipeline{params: params, log: log}, nil
}

// Run executes every stage over the mask. An empty mask is not an
// error: the result simply contains no components, stars, or quads.
func (p *Pipeline) Run(m *mask.Mask) (*Result, error) {
	if m == nil {
		return nil, ErrMissingMask
	}

	start := time.Now()

	pixels := m.ForegroundPixels()
	p.log.Debug().
		Int("foregroundPixels", len(pixels)).
		Dur("elapsed", time.Since(start)).
		Msg("Scanned mask")

	stage := time.Now()
	components := detect.Label(pixels)
	p.log.Debug().
		Int("components", len(components)).
		Dur("elapsed", time.Since(stage)).
		Msg("Labeled connected components")

	stage = time.Now()
	props := detect.MeasureAll(components)
	stars := detect.SelectStars(props, p.params.MaxStars, p.params.MinDistancePercent, m.Width(), m.Height())
	p.log.Debug().
		Int("candidates", len(props)).
		Int("selected", len(stars)).
		Dur("elapsed", time.Since(stage)).
		Msg("Selected stars")

	stage = time.Now()
	starInfos := make([]quads.StarInfo, len(stars))
	for i, s := range stars {
		starInfos[i] = quads.StarInfo{
			X:    s.Centroid.X,
			Y:    s.Centroid.Y,
			Area: s.Area,
		}
	}
	seedQuads := quads.Build(starInfos, p.params.KNeighbors)
	quadCount := quads.TotalQuads(seedQuads)
	p.log.Debug().
		Int("seeds", len(seedQuads)).
		Int("quads", quadCount).
		Dur("elapsed", time.Since(stage)).
		Msg("Built quads")

	p.log.Info().
		Int("components", len(components)).
		Int("stars", len(stars)).
		Int("quads", quadCount).
		Dur("total", time.Since(start)).
		Msg("Pipeline complete")

	return &Result{
		Width:           m.Width(),
		Height:          m.Height(),
		TotalComponents: len(components),
		Stars:           stars,
		SeedQuads:       seedQuads,
		QuadCount:       quadCount,
	}, nil
}
