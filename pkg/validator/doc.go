// Package validator provides small composable validation rules.
//
// A Rule pairs a check with the error reported when the check fails. Apply
// runs every rule and returns Errors (nil when everything passes), so all
// problems in a form are reported at once:
//
//	err := validator.Apply(
//		validator.Required("nome", in.Name, "Informe seu nome"),
//		validator.MaxLen("nome", in.Name, 100, "Nome muito longo"),
//		validator.Email("email", in.Email, "Informe um e-mail válido"),
//	)
//
// Messages are supplied by the caller, which keeps user-facing wording (and
// its language) next to the form that shows it.
package validator
