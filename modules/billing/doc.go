// Package billing is the public HTTP surface: the plan page with the
// registration form, the checkout redirect, the processor webhook and the
// page payers return to after paying.
//
//	r.Mount("/", billing.Router(billing.Options{
//		Service: svc,
//		Plans:   store,
//		Logger:  log,
//	}))
package billing
