package validation

import (
	"testing"

	"github.com/arxos/wallkernel/geom"
	"github.com/arxos/wallkernel/kernelconfig"
	"github.com/arxos/wallkernel/kernelerrors"
)

func square(x0, y0, x1, y1 float64) *geom.Polygon {
	ring := geom.Ring{
		geom.NewPoint(x0, y0), geom.NewPoint(x1, y0),
		geom.NewPoint(x1, y1), geom.NewPoint(x0, y1),
	}
	return geom.NewPolygon(ring, nil)
}

func TestValidatePassesCleanPolygon(t *testing.T) {
	p := square(0, 0, 10, 10)
	pipeline := New(kernelconfig.Default())
	report := pipeline.Validate(ModePost, []*geom.Polygon{p}, 1e-6)
	if !report.Passed {
		t.Fatalf("expected a clean square to pass validation, errors: %v", report.Errors)
	}
}

func TestValidateSkipsDisabledMode(t *testing.T) {
	opts := kernelconfig.Default()
	opts.EnablePreValidation = false
	pipeline := New(opts)
	report := pipeline.Validate(ModePre, nil, 1e-6)
	if !report.Passed || len(report.Stages) != 0 {
		t.Errorf("expected a disabled mode to short-circuit with no stages run, got %+v", report)
	}
}

func TestValidateFlagsDegenerateGeometry(t *testing.T) {
	degenerate := geom.NewPolygon(geom.Ring{geom.NewPoint(0, 0), geom.NewPoint(1, 0)}, nil)
	opts := kernelconfig.Default()
	opts.EnableAutoRecovery = false
	pipeline := New(opts)
	report := pipeline.Validate(ModePost, []*geom.Polygon{degenerate}, 1e-6)
	if report.Passed {
		t.Fatalf("expected a two-point ring to fail geometric-consistency")
	}
	found := false
	for _, e := range report.Errors {
		if e.Kind == kernelerrors.DegenerateGeometry {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a degenerate-geometry error, got %v", report.Errors)
	}
}

func TestValidateAutoRecoversSelfIntersection(t *testing.T) {
	// A bowtie: edges (0,0)-(10,10) and (10,0)-(0,12) cross near (5.45, 5.45).
	bowtie := &geom.Polygon{
		ID: "bowtie",
		Outer: geom.Ring{
			geom.NewPoint(0, 0), geom.NewPoint(10, 10),
			geom.NewPoint(10, 0), geom.NewPoint(0, 12),
		},
	}
	opts := kernelconfig.Default()
	opts.EnableAutoRecovery = true
	opts.QualityThreshold = 0.5
	pipeline := New(opts)
	report := pipeline.Validate(ModePost, []*geom.Polygon{bowtie}, 1e-6)
	if len(report.Recovered) == 0 {
		t.Errorf("expected at least one recovery attempt to be recorded")
	}
}

func TestApplyReportingLevelMinimalStripsDetail(t *testing.T) {
	report := Report{Mode: ModePost, Passed: false, Warnings: []string{"w"}}
	trimmed := applyReportingLevel(report, kernelconfig.ReportingMinimal)
	if len(trimmed.Warnings) != 0 || trimmed.Stages != nil {
		t.Errorf("expected minimal reporting to drop warnings and stages, got %+v", trimmed)
	}
	if trimmed.Passed != report.Passed {
		t.Errorf("expected minimal reporting to preserve Passed")
	}
}

func TestRecoverDropsDegenerateGeometry(t *testing.T) {
	good := square(0, 0, 10, 10)
	bad := geom.NewPolygon(geom.Ring{geom.NewPoint(0, 0), geom.NewPoint(1, 0)}, nil)
	report := runStage(Stage{Name: StageGeometricConsistency, Validate: checkGeometricConsistency}, []*geom.Polygon{good, bad}, 1e-6)
	outcomes, recovered := Recover(report.Errors, []*geom.Polygon{good, bad}, 3, 0.9)
	if len(recovered) != 1 {
		t.Fatalf("expected the degenerate polygon dropped, got %d remaining", len(recovered))
	}
	if len(outcomes) == 0 || outcomes[0].Strategy != RecoverDegenerateGeometry {
		t.Errorf("expected degenerate-recovery to run first, got %+v", outcomes)
	}
}
