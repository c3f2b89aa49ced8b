// Package binder populates structs from HTTP form data using `form` tags.
//
//	type checkoutForm struct {
//		Name   string              `form:"nome"`
//		PlanID subscription.PlanID `form:"plano_id"`
//		Skip   string              `form:"-"`
//	}
//
// Fields may be strings, booleans, signed and unsigned integers, floats, any
// named type over those kinds, pointers to them, or slices of them for
// multi-value fields. Values that fail to parse are reported as ErrInvalidForm
// naming the field.
package binder
