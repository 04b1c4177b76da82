package rel

// Step is one stage of a pipeline: a Command, a Mapper, or a nested
// Pipeline.
type Step interface {
	// runStep executes the stage with the value piped from the previous
	// stage (nil for the first) and the previous stage's raw tuples as
	// upstream context.
	runStep(piped interface{}, upstream Tuples) (interface{}, error)

	// stepResult reports the declared shape of the stage's output.
	stepResult() Cardinality
}

// Pipeline is an ordered, immutable sequence of steps. Invoking a pipeline
// runs its steps strictly in order; the first failing step aborts the
// invocation with that step's error and later steps never run. Each
// succeeding step receives the previous step's output tuple as its input and
// as upstream context for dependent-field derivation. Mutations committed by
// steps before a failure are not rolled back; callers needing all-or-nothing
// semantics must bring their own transaction boundary around the whole
// invocation.
type Pipeline struct {
	steps []Step
}

var _ Step = (*Pipeline)(nil)

// Sequential composes steps left to right into a pipeline (the `a then b`
// operator). Step arrangements that can be proven invalid — a collection
// result feeding a command, a mapper whose arity contradicts its
// predecessor, a multi-tuple mapper mid-chain — are rejected here, at
// construction time.
func Sequential(first Step, rest ...Step) (*Pipeline, error) {
	steps := append([]Step{first}, rest...)
	if err := checkSteps(steps); err != nil {
		return nil, err
	}
	return &Pipeline{steps: steps}, nil
}

// Then returns a new pipeline with next appended; the receiver is not
// mutated.
func (p *Pipeline) Then(next Step) (*Pipeline, error) {
	steps := make([]Step, 0, len(p.steps)+1)
	steps = append(steps, p.steps...)
	steps = append(steps, next)
	if err := checkSteps(steps); err != nil {
		return nil, err
	}
	return &Pipeline{steps: steps}, nil
}

// Call invokes the pipeline with input feeding the first step. The returned
// value is the final step's output: a Tuple or Tuples for a command, a
// domain object (or slice) for a terminal mapper.
func (p *Pipeline) Call(input Tuple) (interface{}, error) {
	var piped interface{} = input

	for i, step := range p.steps {
		var upstream Tuples
		if i > 0 {
			switch v := piped.(type) {
			case Tuple:
				upstream = Tuples{v}
			case Tuples:
				upstream = v
			}
		}

		out, err := step.runStep(piped, upstream)
		if err != nil {
			return nil, err
		}
		piped = out
	}

	return piped, nil
}

// runStep lets a whole pipeline nest as a step of another pipeline.
func (p *Pipeline) runStep(piped interface{}, upstream Tuples) (interface{}, error) {
	var in Tuple
	switch v := piped.(type) {
	case nil:
		in = Tuple{}
	case Tuple:
		in = v
	default:
		return nil, NewErrConfiguration("pipeline step requires a single tuple input, got %T", piped)
	}
	return p.Call(in)
}

func (p *Pipeline) stepResult() Cardinality {
	if len(p.steps) == 0 {
		return One
	}
	return p.steps[len(p.steps)-1].stepResult()
}

func checkSteps(steps []Step) error {
	if len(steps) == 0 {
		return NewErrConfiguration("pipeline has no steps")
	}
	for i := 0; i < len(steps)-1; i++ {
		a, b := steps[i], steps[i+1]

		// A mapper mid-chain must be a single-tuple transform; only then
		// can its output plausibly feed the next stage.
		if m, ok := a.(*Mapper); ok && m.result != One {
			return NewErrConfiguration("mapper '%s' with result '%s' can only terminate a pipeline", m.name, m.result)
		}

		switch next := b.(type) {
		case *Command:
			if a.stepResult() == Many {
				return NewErrConfiguration("command '%s' takes a single tuple but its predecessor yields a collection", next.name)
			}
		case *Mapper:
			if next.result != a.stepResult() {
				return NewErrConfiguration("mapper '%s' declared '%s' but its predecessor yields '%s'", next.name, next.result, a.stepResult())
			}
		}
	}
	return nil
}

// ResultPipeline is the result-propagating composition form (the `a bind b`
// operator): data flow is identical to Sequential, but invocation never
// raises — the outcome, success or first failure, is re-wrapped into a
// Result for the caller to inspect. This is the form safe to use directly
// inside a Try region.
type ResultPipeline struct {
	p *Pipeline
}

// Bind composes steps left to right into a result-propagating pipeline. The
// same construction-time checks as Sequential apply.
func Bind(first Step, rest ...Step) (*ResultPipeline, error) {
	p, err := Sequential(first, rest...)
	if err != nil {
		return nil, err
	}
	return &ResultPipeline{p: p}, nil
}

// Call invokes the pipeline and captures its outcome in a Result.
func (rp *ResultPipeline) Call(input Tuple) Result {
	out, err := rp.p.Call(input)
	if err != nil {
		return Failure(err)
	}
	return Success(out)
}

// Pipeline returns the underlying sequential pipeline.
func (rp *ResultPipeline) Pipeline() *Pipeline { return rp.p }
