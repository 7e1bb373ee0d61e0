// Package ratelaw compiles a reaction network into mass-action rate laws.
//
// For every species X the rate law is
//
//	dX/dt = sum over transactions t of net(X, t) * k_t * prod_s s^m(s, t)
//
// where net is production minus consumption arcs and m(s, t) is the number
// of arcs s -> t. Transactions with net(X, t) == 0 are left out.
//
// The same [Terms] list feeds two outputs: [Equation], [Align] and
// [Document] typeset it as LaTeX, and [Compile] binds it to numeric rate
// constants as a [System] the integrators can drive.
package ratelaw
