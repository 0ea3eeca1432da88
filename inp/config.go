// Package inp holds the JSON-loadable configuration for a CCVT-N run,
// playing the same role that github.com/cpmech/gofem/inp.Simulation plays
// for a finite-element run: one typed document validated eagerly, before
// any solver state is touched.
package inp

import (
	"encoding/json"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
	"github.com/sylvainthery/ccvt/ccvterr"
	"github.com/sylvainthery/ccvt/optimize"
)

// DomainData describes the rectangular sampling grid and the Gaussian
// density modulating it (spec §4.A).
type DomainData struct {
	MuX    float64 `json:"muX"`
	MuY    float64 `json:"muY"`
	SigX   float64 `json:"sigX"`
	SigY   float64 `json:"sigY"`
	W      int     `json:"w"`
	H      int     `json:"h"`
	VMax   float64 `json:"vmax"`
	Invert bool    `json:"invert"`
}

// SitesData describes the initial site population; exactly one of Points
// or the generator fields should be set. Validate checks that Weights, when
// given, has one entry per point, but the CLI does not apply Weights: every
// site starts at weight 0.
type SitesData struct {
	Points  [][2]float64 `json:"points,omitempty"`
	Weights []float64    `json:"weights,omitempty"`

	GenRandom       int `json:"genRandom,omitempty"`
	GenRandomImage  int `json:"genRandomImage,omitempty"`
	GenGridNx       int `json:"genGridNx,omitempty"`
	GenGridNy       int `json:"genGridNy,omitempty"`
}

// TargetsData describes the capacity and neighbor-proportion targets.
// Capacities, if omitted, default to a uniform share of the domain's
// density integral. NeighborProportions, if omitted, disables neighbor
// gradient descent in the driver.
type TargetsData struct {
	Capacities          []float64   `json:"capacities,omitempty"`
	NeighborProportions [][]float64 `json:"neighborProportions,omitempty"`
}

// SolverData configures the outer optimizer driver (spec §4.G).
type SolverData struct {
	WStep             float64 `json:"wstep"`
	XStep             float64 `json:"xstep"`
	MaxNewtonIters    int     `json:"maxNewtonIters"`
	Epsilon           float64 `json:"epsilon"`
	MaxIters          int     `json:"maxIters"`
	Tau               float64 `json:"tau"`
	ConnectivityFixed bool    `json:"connectivityFixed"`
	Seed              int64   `json:"seed"`
}

// Config is the single JSON entry point for a CCVT-N run.
type Config struct {
	Domain  DomainData  `json:"domain"`
	Sites   SitesData   `json:"sites"`
	Targets TargetsData `json:"targets"`
	Solver  SolverData  `json:"solver"`
}

// Default fills in the solver knobs the original CCVT() constructor
// hard-codes (tau=1.0) and the conservative defaults used throughout the
// scenarios in spec §8.
func Default() Config {
	return Config{
		Solver: SolverData{
			WStep:          1.0,
			XStep:          0.1,
			MaxNewtonIters: 50,
			Epsilon:        1e-6,
			MaxIters:       200,
			Tau:            1.0,
		},
	}
}

// ToParams converts the JSON-loadable solver knobs into an
// optimize.Params, the form the driver actually consumes.
func (s SolverData) ToParams() optimize.Params {
	return optimize.Params{
		WStep:             s.WStep,
		XStep:             s.XStep,
		MaxNewtonIters:    s.MaxNewtonIters,
		Epsilon:           s.Epsilon,
		MaxIters:          s.MaxIters,
		ConnectivityFixed: s.ConnectivityFixed,
	}
}

// ToParams is a convenience forwarding to Config.Solver.ToParams.
func (c Config) ToParams() optimize.Params { return c.Solver.ToParams() }

// Params exposes the solver's tunable knobs as a list of named
// parameters, the same shape gofem's inp.Simulation uses for its
// adjustable parameters (inp/sim.go's adjmap map[int]*fun.Prm). Driving
// this off fun.Prm rather than a bespoke struct lets the CLI and any
// future logging print the active knobs without hard-coding their
// names a second time.
func (s SolverData) Params() []*fun.Prm {
	return []*fun.Prm{
		{N: "wstep", V: s.WStep},
		{N: "xstep", V: s.XStep},
		{N: "epsilon", V: s.Epsilon},
		{N: "tau", V: s.Tau},
	}
}

// Params is a convenience forwarding to Config.Solver.Params.
func (c Config) Params() []*fun.Prm { return c.Solver.Params() }

// ReadConfig reads and validates a Config from a JSON file, the same
// two-step shape as inp.ReadSim: unmarshal, then Validate before any
// solver state is allocated. InvalidConfig errors are returned, never
// panicked, matching spec §7: "surfaced immediately at the setter; no
// state is modified."
func ReadConfig(path string) (cfg *Config, err error) {
	buf, err := io.ReadFile(path)
	if err != nil {
		return nil, chk.Err("cannot read config file %q:\n%v", path, err)
	}
	cfg = new(Config)
	*cfg = Default()
	if err = json.Unmarshal(buf, cfg); err != nil {
		return nil, chk.Err("cannot parse config file %q:\n%v", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the structural invariants that must hold before any
// mutating call is made: positive domain extent, positive standard
// deviations, and a capacity vector sized to match the sites (when both
// are given up front). This is the InvalidConfig error kind of spec §7.
func (c *Config) Validate() error {
	if c.Domain.W <= 0 || c.Domain.H <= 0 {
		return ccvterr.New(ccvterr.InvalidConfig, "domain extent must be positive, got W=%d H=%d", c.Domain.W, c.Domain.H)
	}
	if c.Domain.SigX <= 0 || c.Domain.SigY <= 0 {
		return ccvterr.New(ccvterr.InvalidConfig, "sigma must be positive, got sigX=%g sigY=%g", c.Domain.SigX, c.Domain.SigY)
	}
	if c.Domain.VMax <= 0 {
		return ccvterr.New(ccvterr.InvalidConfig, "vmax must be positive, got %g", c.Domain.VMax)
	}
	n := len(c.Sites.Points)
	if len(c.Targets.Capacities) > 0 && n > 0 && len(c.Targets.Capacities) != n {
		return ccvterr.New(ccvterr.InvalidConfig, "capacities size mismatch: %d capacities for %d sites", len(c.Targets.Capacities), n)
	}
	if len(c.Sites.Weights) > 0 && n > 0 && len(c.Sites.Weights) != n {
		return ccvterr.New(ccvterr.InvalidConfig, "weights size mismatch: %d weights for %d sites", len(c.Sites.Weights), n)
	}
	for i, row := range c.Targets.NeighborProportions {
		if len(row) != len(c.Targets.NeighborProportions) {
			return ccvterr.New(ccvterr.InvalidConfig, "neighborProportions must be square, row %d has %d entries, want %d", i, len(row), len(c.Targets.NeighborProportions))
		}
	}
	if c.Solver.MaxIters < 0 || c.Solver.MaxNewtonIters < 0 {
		return ccvterr.New(ccvterr.InvalidConfig, "iteration caps must be non-negative")
	}
	return nil
}
