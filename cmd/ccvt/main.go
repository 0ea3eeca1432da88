// Command ccvt is a minimal driver: read a Config, build a CCVT instance,
// run it to convergence, and print the resulting capacities. It is not a
// viewer — rendering diagrams is out of scope (spec Non-goals).
package main

import (
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/sylvainthery/ccvt/ccvt"
	"github.com/sylvainthery/ccvt/geom"
	"github.com/sylvainthery/ccvt/inp"
)

func main() {
	cfgPath := flag.String("config", "", "path to a CCVT-N JSON config file")
	verbose := flag.Bool("v", false, "verbose per-iteration logging")
	flag.Parse()

	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			io.Pfred("ERROR: %v\n", err)
		}
	}()

	if *cfgPath == "" {
		chk.Panic("missing required -config flag")
	}

	cfg, err := inp.ReadConfig(*cfgPath)
	if err != nil {
		chk.Panic("%v", err)
	}

	io.Pf("CCVT-N\n")
	if *verbose {
		for _, p := range cfg.Params() {
			io.Pf("param\t%s\t%23.10e\n", p.N, p.V)
		}
	}

	c := ccvt.New(cfg.Solver.Seed)
	c.SetVerbose(*verbose)
	c.SetConnectivityFixed(cfg.Solver.ConnectivityFixed)
	c.SetTau(cfg.Solver.Tau)

	if err := c.SetDomain(cfg.Domain.MuX, cfg.Domain.MuY, cfg.Domain.SigX, cfg.Domain.SigY,
		cfg.Domain.W, cfg.Domain.H, cfg.Domain.VMax); err != nil {
		chk.Panic("%v", err)
	}
	if cfg.Domain.Invert {
		c.ToggleInvert()
	}

	switch {
	case len(cfg.Sites.Points) > 0:
		pts := make([]geom.Point, len(cfg.Sites.Points))
		for i, p := range cfg.Sites.Points {
			pts[i] = geom.Point{X: p[0], Y: p[1]}
		}
		c.SetSites(pts)
	case cfg.Sites.GenRandom > 0:
		c.GenerateRandomSites(cfg.Sites.GenRandom)
	case cfg.Sites.GenRandomImage > 0:
		c.GenerateRandomSitesBasedOnImage(cfg.Sites.GenRandomImage)
	case cfg.Sites.GenGridNx > 0 && cfg.Sites.GenGridNy > 0:
		c.GenerateRegularGrid(cfg.Sites.GenGridNx * cfg.Sites.GenGridNy)
	default:
		chk.Panic("config specifies no sites: set sites.points or a generator field")
	}

	capacities := cfg.Targets.Capacities
	if len(capacities) == 0 {
		n, err := c.CountVisibleSites()
		if err != nil {
			chk.Panic("%v", err)
		}
		if n == 0 {
			chk.Panic("no sites to optimize")
		}
		total := c.Domain.Integral()
		capacities = make([]float64, n)
		for i := range capacities {
			capacities[i] = total / float64(n)
		}
	}
	if err := c.SetCapacities(capacities); err != nil {
		chk.Panic("%v", err)
	}
	if len(cfg.Targets.NeighborProportions) > 0 {
		if err := c.SetNeighborProportions(cfg.Targets.NeighborProportions); err != nil {
			chk.Panic("%v", err)
		}
	}

	if err := c.OptimizeAll(); err != nil {
		chk.Panic("%v", err)
	}

	areas, err := c.GetCapacities()
	if err != nil {
		chk.Panic("%v", err)
	}
	for i, a := range areas {
		io.Pf("site\t%d\tarea\t%23.10e\ttarget\t%23.10e\n", i, a, capacities[i])
	}
}
