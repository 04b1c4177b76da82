package rel

import "fmt"

// Result is a two-branch container holding either an operation's success
// value or its failure. Results are produced per invocation and owned by the
// caller; they are never persisted.
type Result struct {
	value interface{}
	err   error
}

// Success wraps v in a success-branch result.
func Success(v interface{}) Result {
	return Result{value: v}
}

// Failure wraps err in a failure-branch result.
func Failure(err error) Result {
	return Result{err: err}
}

// OK reports whether the result is on the success branch.
func (r Result) OK() bool { return r.err == nil }

// Value returns the success value. It panics when called on a failure; check
// OK or Err first.
func (r Result) Value() interface{} {
	if r.err != nil {
		panic(fmt.Sprintf("rel: Value called on failed result: %v", r.err))
	}
	return r.value
}

// Err returns the captured failure, or nil on the success branch.
func (r Result) Err() error { return r.err }

// Scope is the handle passed to a Try body. Calls made through the scope
// abort the body at the first failure instead of returning an error.
type Scope struct{}

// scopeFailure carries a scope-aborting error through the panic used to
// unwind the Try body. Foreign panics are re-raised untouched.
type scopeFailure struct {
	err error
}

// Try executes body as a scoped evaluation region: any failure signaled
// through the scope stops the region at that statement and is captured into
// the returned Result's error branch. On full completion, body's return
// value becomes the success branch.
func Try(body func(s *Scope) interface{}) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(scopeFailure)
			if !ok {
				panic(r)
			}
			res = Failure(f.err)
		}
	}()
	return Success(body(&Scope{}))
}

// Call invokes a command, mapper, or pipeline step with input and returns
// its output, aborting the enclosing Try region on failure.
func (s *Scope) Call(step Step, input Tuple) interface{} {
	out, err := step.runStep(input, nil)
	if err != nil {
		panic(scopeFailure{err: err})
	}
	return out
}

// Check aborts the enclosing Try region when err is non-nil. It lets a Try
// body fold in operations, like relation reads, that return plain errors.
func (s *Scope) Check(err error) {
	if err != nil {
		panic(scopeFailure{err: err})
	}
}
