// Package validation implements the validation pipeline and recovery
// strategies (spec §4.10): staged checks over a WallSolid's polygons, run
// pre- and/or post-operation, with priority-ordered automatic recovery.
package validation

import (
	"time"

	"github.com/arxos/wallkernel/geom"
	"github.com/arxos/wallkernel/kernelconfig"
	"github.com/arxos/wallkernel/kernelerrors"
)

// StageName names a validation stage; the constants below are the built-in
// stages, in default order.
type StageName string

const (
	StageGeometricConsistency StageName = "geometric-consistency"
	StageTopology             StageName = "topology"
	StageNumericalStability   StageName = "numerical-stability"
	StageQualityMetrics       StageName = "quality-metrics"
	StagePerformance          StageName = "performance"
)

// Stage is a single named validation check the pipeline runs. ValidationStage
// is an open set (spec §9): Validate is the check itself, CanRecover reports
// whether an error this stage raised is recoverable (the built-in stages go
// by the error's Recoverable flag). The recovery pass does not call
// CanRecover; Recover decides from each error's Recoverable flag. A
// host extends the pipeline past the five defaults via Pipeline.Register.
type Stage struct {
	Name       StageName
	Validate   func(polygons []*geom.Polygon, tolerance float64, result *StageResult)
	CanRecover func(*kernelerrors.KernelError) bool
}

func recoverableByFlag(e *kernelerrors.KernelError) bool { return e.Recoverable }

// DefaultStages is the pipeline's built-in stage table, in default order.
func DefaultStages() []Stage {
	return []Stage{
		{Name: StageGeometricConsistency, Validate: checkGeometricConsistency, CanRecover: recoverableByFlag},
		{Name: StageTopology, Validate: checkTopology, CanRecover: recoverableByFlag},
		{Name: StageNumericalStability, Validate: checkNumericalStability, CanRecover: recoverableByFlag},
		{Name: StageQualityMetrics, Validate: checkQualityMetrics, CanRecover: recoverableByFlag},
		{Name: StagePerformance, Validate: checkPerformance, CanRecover: recoverableByFlag},
	}
}

// Mode names which side of an operation a validation call covers.
type Mode string

const (
	ModePre  Mode = "pre"
	ModePost Mode = "post"
)

// StageResult is one stage's outcome.
type StageResult struct {
	Name           StageName
	Passed         bool
	Errors         []*kernelerrors.KernelError
	Warnings       []string
	Metrics        map[string]float64
	ProcessingTime time.Duration
}

// Report is the full pipeline outcome, shaped by the configured reporting
// level (spec §4.10).
type Report struct {
	Mode      Mode
	Passed    bool
	Stages    []StageResult
	Errors    []*kernelerrors.KernelError
	Warnings  []string
	Recovered []RecoveryOutcome
}

// Pipeline runs the configured stages against a set of polygons.
type Pipeline struct {
	opts   kernelconfig.Options
	stages []Stage
}

// New builds a Pipeline from kernel options, wired with the default stage
// table.
func New(opts kernelconfig.Options) *Pipeline {
	return &Pipeline{opts: opts, stages: DefaultStages()}
}

// Register appends a host-supplied stage to the pipeline's table, run after
// the built-in stages in the order registered.
func (p *Pipeline) Register(s Stage) {
	p.stages = append(p.stages, s)
}

// Validate runs every enabled stage for mode against polygons, honoring
// fail-fast, and applies recovery strategies when enabled and needed.
func (p *Pipeline) Validate(mode Mode, polygons []*geom.Polygon, tolerance float64) Report {
	if mode == ModePre && !p.opts.EnablePreValidation {
		return Report{Mode: mode, Passed: true}
	}
	if mode == ModePost && !p.opts.EnablePostValidation {
		return Report{Mode: mode, Passed: true}
	}

	report := Report{Mode: mode, Passed: true}
	for _, stage := range p.stages {
		result := runStage(stage, polygons, tolerance)
		report.Stages = append(report.Stages, result)
		report.Errors = append(report.Errors, result.Errors...)
		report.Warnings = append(report.Warnings, result.Warnings...)
		if !result.Passed {
			report.Passed = false
			if p.opts.FailFast {
				break
			}
		}
	}

	if !report.Passed && p.opts.EnableAutoRecovery {
		outcomes, recoveredPolygons := Recover(report.Errors, polygons, p.opts.MaxRecoveryAttempts, p.opts.QualityThreshold)
		report.Recovered = outcomes
		if len(recoveredPolygons) > 0 {
			revalidated := Report{}
			for _, stage := range p.stages {
				result := runStage(stage, recoveredPolygons, tolerance)
				revalidated.Stages = append(revalidated.Stages, result)
				if !result.Passed {
					revalidated.Passed = false
				}
			}
			if allPassed(revalidated.Stages) {
				report.Passed = true
			}
		}
	}

	return applyReportingLevel(report, p.opts.ReportingLevel)
}

func allPassed(stages []StageResult) bool {
	for _, s := range stages {
		if !s.Passed {
			return false
		}
	}
	return true
}

func runStage(stage Stage, polygons []*geom.Polygon, tolerance float64) StageResult {
	start := time.Now()
	result := StageResult{Name: stage.Name, Passed: true, Metrics: map[string]float64{}}
	stage.Validate(polygons, tolerance, &result)
	result.ProcessingTime = time.Since(start)
	return result
}

func applyReportingLevel(report Report, level kernelconfig.ReportingLevel) Report {
	switch level {
	case kernelconfig.ReportingMinimal:
		return Report{Mode: report.Mode, Passed: report.Passed}
	case kernelconfig.ReportingNormal:
		return Report{Mode: report.Mode, Passed: report.Passed, Errors: report.Errors, Warnings: report.Warnings, Recovered: report.Recovered}
	default: // comprehensive
		return report
	}
}
