package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/peanoproof/peano/internal/canon"
	"github.com/peanoproof/peano/internal/claims"
	"github.com/peanoproof/peano/internal/ledger"
	"github.com/peanoproof/peano/nat"
	"github.com/peanoproof/peano/order"
)

// CheckResult pairs the persisted check row with the outcome of
// comparing it against the claim's declared expectation.
type CheckResult struct {
	ledger.CheckRecord

	// Expect is what the claim declared.
	Expect claims.Expectation

	// Pass is true when the computed outcome matches Expect.
	Pass bool

	// Derivation is the native evidence chain. Nil when the relation
	// was rejected: absence of a derivation is the whole finding.
	Derivation *order.Derivation
}

// Report summarizes one run over a suite.
type Report struct {
	RunToken      string
	Engine        string
	EngineVersion string
	SuiteHash     string
	SuiteSource   string
	StartedSeq    int64
	FinishedSeq   int64
	Results       []CheckResult
	Passed        int
	Failed        int
}

// Ok reports whether every claim landed on its declared expectation.
func (r *Report) Ok() bool {
	return r.Failed == 0
}

// Failures returns the results whose outcome contradicted the claim,
// in run order.
func (r *Report) Failures() []CheckResult {
	var failures []CheckResult
	for _, res := range r.Results {
		if !res.Pass {
			failures = append(failures, res)
		}
	}
	return failures
}

// Runner walks claim suites and records provenance. Construct with New;
// the zero value is not usable.
type Runner struct {
	backend Backend
	clock   *Clock
	tokens  TokenGenerator
	ledger  *ledger.Ledger
}

// Option configures a Runner.
type Option func(*Runner)

// WithBackend selects the deciding backend. Default is Native.
func WithBackend(b Backend) Option {
	return func(r *Runner) { r.backend = b }
}

// WithClock supplies a pre-positioned clock. Used to resume seq
// stamping after the last position recorded in a ledger.
func WithClock(c *Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithTokenGenerator supplies the run token source. Tests pass a
// FixedGenerator to make runs reproducible.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(r *Runner) { r.tokens = g }
}

// WithLedger attaches a provenance ledger. Without one, runs still
// produce a full Report but persist nothing.
func WithLedger(l *ledger.Ledger) Option {
	return func(r *Runner) { r.ledger = l }
}

// New creates a Runner. Defaults: native backend, fresh clock, UUIDv7
// run tokens, no ledger.
func New(opts ...Option) *Runner {
	r := &Runner{
		backend: Native{},
		clock:   NewClock(),
		tokens:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run checks every claim in the suite, in declaration order, and
// returns the report. Claims whose outcome contradicts their declared
// expectation are counted as failures in the report; they do not abort
// the run. Run returns an error only when the run itself cannot be
// trusted: backend failure, backend/native divergence, ledger write
// failure, or context cancellation.
func (r *Runner) Run(ctx context.Context, suite *claims.Suite) (*Report, error) {
	if suite == nil || len(suite.Claims) == 0 {
		return nil, ErrEmptySuite
	}

	suiteHash, err := suite.Hash()
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}

	token := r.tokens.Generate()
	startedSeq := r.clock.Next()

	slog.Info("run starting",
		"token", token,
		"engine", r.backend.Name(),
		"claims", len(suite.Claims),
		"suite_hash", suiteHash,
	)

	if r.ledger != nil {
		err := r.ledger.BeginRun(ctx, ledger.RunRecord{
			Token:         token,
			Engine:        r.backend.Name(),
			EngineVersion: r.backend.Version(),
			SuiteHash:     suiteHash,
			SuiteSource:   suite.Source,
			StartedSeq:    startedSeq,
		})
		if err != nil {
			return nil, fmt.Errorf("runner: %w", err)
		}
	}

	report := &Report{
		RunToken:      token,
		Engine:        r.backend.Name(),
		EngineVersion: r.backend.Version(),
		SuiteHash:     suiteHash,
		SuiteSource:   suite.Source,
		StartedSeq:    startedSeq,
	}

	for _, claim := range suite.Claims {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := r.check(ctx, token, claim)
		if err != nil {
			return nil, err
		}

		report.Results = append(report.Results, result)
		if result.Pass {
			report.Passed++
		} else {
			report.Failed++
			slog.Warn("claim failed",
				"claim", claim.Name,
				"expect", claim.Expect,
				"outcome", result.Outcome,
			)
		}
	}

	report.FinishedSeq = r.clock.Next()
	if r.ledger != nil {
		if err := r.ledger.FinishRun(ctx, token, report.FinishedSeq, int64(len(report.Results))); err != nil {
			return nil, fmt.Errorf("runner: %w", err)
		}
	}

	slog.Info("run finished",
		"token", token,
		"passed", report.Passed,
		"failed", report.Failed,
	)

	return report, nil
}

// check decides one claim and assembles its provenance row.
//
// The backend supplies the verdict; the native prover supplies the
// evidence. Derive's only failure mode is not-derivable, so derr
// doubles as the native verdict.
func (r *Runner) check(ctx context.Context, token string, claim claims.Claim) (CheckResult, error) {
	seq := r.clock.Next()

	holds, err := r.backend.Decide(ctx, claim.Lesser, claim.Greater)
	if err != nil {
		return CheckResult{}, fmt.Errorf("runner: decide %s: %w", claim.Name, err)
	}

	deriv, derr := order.Derive(claim.Lesser, claim.Greater)
	nativeHolds := derr == nil

	if holds != nativeHolds {
		return CheckResult{}, &DivergenceError{
			Claim:        claim.Name,
			Lesser:       nat.Format(claim.Lesser),
			Greater:      nat.Format(claim.Greater),
			Backend:      r.backend.Name(),
			BackendHolds: holds,
			NativeHolds:  nativeHolds,
		}
	}

	outcome := ledger.OutcomeRejected
	hash := ""
	var stepCount int64
	var steps []ledger.StepRecord
	if holds {
		outcome = ledger.OutcomeHolds
		hash, err = deriv.Hash()
		if err != nil {
			return CheckResult{}, fmt.Errorf("runner: hash %s: %w", claim.Name, err)
		}
		stepCount = int64(len(deriv.Steps))
		steps = make([]ledger.StepRecord, len(deriv.Steps))
		for i, s := range deriv.Steps {
			steps[i] = ledger.StepRecord{
				Idx:     int64(i),
				Rule:    string(s.Rule),
				Lesser:  s.Lesser,
				Greater: s.Greater,
			}
		}
	} else {
		deriv = nil
	}

	lesser := nat.Format(claim.Lesser)
	greater := nat.Format(claim.Greater)

	id, err := canon.CheckID(token, claim.Name, lesser, greater, string(outcome), seq)
	if err != nil {
		return CheckResult{}, fmt.Errorf("runner: check id %s: %w", claim.Name, err)
	}

	record := ledger.CheckRecord{
		ID:             id,
		RunToken:       token,
		Seq:            seq,
		Claim:          claim.Name,
		Lesser:         lesser,
		Greater:        greater,
		LesserDepth:    int64(nat.Depth(claim.Lesser)),
		GreaterDepth:   int64(nat.Depth(claim.Greater)),
		Outcome:        outcome,
		StepCount:      stepCount,
		DerivationHash: hash,
	}

	if r.ledger != nil {
		inserted, err := r.ledger.WriteCheck(ctx, record, steps)
		if err != nil {
			return CheckResult{}, fmt.Errorf("runner: write check %s: %w", claim.Name, err)
		}
		if !inserted {
			slog.Debug("check already recorded, skipping (idempotent)",
				"claim", claim.Name,
				"id", id,
			)
		}
	}

	slog.Debug("check decided",
		"claim", claim.Name,
		"lesser", lesser,
		"greater", greater,
		"outcome", outcome,
		"seq", seq,
	)

	return CheckResult{
		CheckRecord: record,
		Expect:      claim.Expect,
		Pass:        string(claim.Expect) == string(outcome),
		Derivation:  deriv,
	}, nil
}
