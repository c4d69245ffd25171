// Package selectx implements the N-way select combinator: given 2..5
// input futures of distinct types, it returns whichever becomes ready
// first, tagged with its position.
//
// Each input is polled in order (A, B, C, ...) on every poll of the
// combined future, returning on the first one ready. Each arity (2
// through 5) gets its own poll function and its own concrete EitherN
// result type, rather than one padded 5-wide engine with always-pending
// fillers for the unused slots.
package selectx

import "github.com/entropyrt/corert/pkg/task"

// Either2 tags which of two futures completed.
type Either2[A, B any] struct {
	tag  int
	a    A
	b    B
}

func A2[A, B any](v A) Either2[A, B] { return Either2[A, B]{tag: 0, a: v} }
func B2[A, B any](v B) Either2[A, B] { return Either2[A, B]{tag: 1, b: v} }

func (e Either2[A, B]) IsA() bool { return e.tag == 0 }
func (e Either2[A, B]) IsB() bool { return e.tag == 1 }
func (e Either2[A, B]) A() A      { return e.a }
func (e Either2[A, B]) B() B      { return e.b }

// Either3 tags which of three futures completed.
type Either3[A, B, C any] struct {
	tag  int
	a    A
	b    B
	c    C
}

func A3[A, B, C any](v A) Either3[A, B, C] { return Either3[A, B, C]{tag: 0, a: v} }
func B3[A, B, C any](v B) Either3[A, B, C] { return Either3[A, B, C]{tag: 1, b: v} }
func C3[A, B, C any](v C) Either3[A, B, C] { return Either3[A, B, C]{tag: 2, c: v} }

func (e Either3[A, B, C]) IsA() bool { return e.tag == 0 }
func (e Either3[A, B, C]) IsB() bool { return e.tag == 1 }
func (e Either3[A, B, C]) IsC() bool { return e.tag == 2 }
func (e Either3[A, B, C]) A() A      { return e.a }
func (e Either3[A, B, C]) B() B      { return e.b }
func (e Either3[A, B, C]) C() C      { return e.c }

// Either4 tags which of four futures completed.
type Either4[A, B, C, D any] struct {
	tag  int
	a    A
	b    B
	c    C
	d    D
}

func A4[A, B, C, D any](v A) Either4[A, B, C, D] { return Either4[A, B, C, D]{tag: 0, a: v} }
func B4[A, B, C, D any](v B) Either4[A, B, C, D] { return Either4[A, B, C, D]{tag: 1, b: v} }
func C4[A, B, C, D any](v C) Either4[A, B, C, D] { return Either4[A, B, C, D]{tag: 2, c: v} }
func D4[A, B, C, D any](v D) Either4[A, B, C, D] { return Either4[A, B, C, D]{tag: 3, d: v} }

func (e Either4[A, B, C, D]) IsA() bool { return e.tag == 0 }
func (e Either4[A, B, C, D]) IsB() bool { return e.tag == 1 }
func (e Either4[A, B, C, D]) IsC() bool { return e.tag == 2 }
func (e Either4[A, B, C, D]) IsD() bool { return e.tag == 3 }
func (e Either4[A, B, C, D]) A() A      { return e.a }
func (e Either4[A, B, C, D]) B() B      { return e.b }
func (e Either4[A, B, C, D]) C() C      { return e.c }
func (e Either4[A, B, C, D]) D() D      { return e.d }

// Either5 tags which of five futures completed.
type Either5[A, B, C, D, E any] struct {
	tag  int
	a    A
	b    B
	c    C
	d    D
	e    E
}

func A5[A, B, C, D, E any](v A) Either5[A, B, C, D, E] { return Either5[A, B, C, D, E]{tag: 0, a: v} }
func B5[A, B, C, D, E any](v B) Either5[A, B, C, D, E] { return Either5[A, B, C, D, E]{tag: 1, b: v} }
func C5[A, B, C, D, E any](v C) Either5[A, B, C, D, E] { return Either5[A, B, C, D, E]{tag: 2, c: v} }
func D5[A, B, C, D, E any](v D) Either5[A, B, C, D, E] { return Either5[A, B, C, D, E]{tag: 3, d: v} }
func E5[A, B, C, D, E any](v E) Either5[A, B, C, D, E] { return Either5[A, B, C, D, E]{tag: 4, e: v} }

func (e Either5[A, B, C, D, E]) IsA() bool { return e.tag == 0 }
func (e Either5[A, B, C, D, E]) IsB() bool { return e.tag == 1 }
func (e Either5[A, B, C, D, E]) IsC() bool { return e.tag == 2 }
func (e Either5[A, B, C, D, E]) IsD() bool { return e.tag == 3 }
func (e Either5[A, B, C, D, E]) IsE() bool { return e.tag == 4 }
func (e Either5[A, B, C, D, E]) A() A      { return e.a }
func (e Either5[A, B, C, D, E]) B() B      { return e.b }
func (e Either5[A, B, C, D, E]) C() C      { return e.c }
func (e Either5[A, B, C, D, E]) D() D      { return e.d }
func (e Either5[A, B, C, D, E]) E() E      { return e.e }

// SelectAB returns a future that polls a and b in order, returning
// whichever completes first.
func SelectAB[A, B any](a task.Future[A], b task.Future[B]) task.Future[Either2[A, B]] {
	return func(cx *task.Context) task.Poll[Either2[A, B]] {
		if p := a(cx); p.IsReady() {
			return task.Ready(A2[A, B](p.Value()))
		}
		if p := b(cx); p.IsReady() {
			return task.Ready(B2[A, B](p.Value()))
		}
		return task.Pending[Either2[A, B]]()
	}
}

// SelectABC returns a future that polls a, b, c in order, returning
// whichever completes first.
func SelectABC[A, B, C any](a task.Future[A], b task.Future[B], c task.Future[C]) task.Future[Either3[A, B, C]] {
	return func(cx *task.Context) task.Poll[Either3[A, B, C]] {
		if p := a(cx); p.IsReady() {
			return task.Ready(A3[A, B, C](p.Value()))
		}
		if p := b(cx); p.IsReady() {
			return task.Ready(B3[A, B, C](p.Value()))
		}
		if p := c(cx); p.IsReady() {
			return task.Ready(C3[A, B, C](p.Value()))
		}
		return task.Pending[Either3[A, B, C]]()
	}
}

// SelectABCD returns a future that polls a, b, c, d in order, returning
// whichever completes first.
func SelectABCD[A, B, C, D any](a task.Future[A], b task.Future[B], c task.Future[C], d task.Future[D]) task.Future[Either4[A, B, C, D]] {
	return func(cx *task.Context) task.Poll[Either4[A, B, C, D]] {
		if p := a(cx); p.IsReady() {
			return task.Ready(A4[A, B, C, D](p.Value()))
		}
		if p := b(cx); p.IsReady() {
			return task.Ready(B4[A, B, C, D](p.Value()))
		}
		if p := c(cx); p.IsReady() {
			return task.Ready(C4[A, B, C, D](p.Value()))
		}
		if p := d(cx); p.IsReady() {
			return task.Ready(D4[A, B, C, D](p.Value()))
		}
		return task.Pending[Either4[A, B, C, D]]()
	}
}

// SelectABCDE returns a future that polls a, b, c, d, e in order,
// returning whichever completes first.
func SelectABCDE[A, B, C, D, E any](a task.Future[A], b task.Future[B], c task.Future[C], d task.Future[D], e task.Future[E]) task.Future[Either5[A, B, C, D, E]] {
	return func(cx *task.Context) task.Poll[Either5[A, B, C, D, E]] {
		if p := a(cx); p.IsReady() {
			return task.Ready(A5[A, B, C, D, E](p.Value()))
		}
		if p := b(cx); p.IsReady() {
			return task.Ready(B5[A, B, C, D, E](p.Value()))
		}
		if p := c(cx); p.IsReady() {
			return task.Ready(C5[A, B, C, D, E](p.Value()))
		}
		if p := d(cx); p.IsReady() {
			return task.Ready(D5[A, B, C, D, E](p.Value()))
		}
		if p := e(cx); p.IsReady() {
			return task.Ready(E5[A, B, C, D, E](p.Value()))
		}
		return task.Pending[Either5[A, B, C, D, E]]()
	}
}
