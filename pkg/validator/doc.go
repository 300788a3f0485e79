// Package validator runs small declarative rule lists and reports every
// failed rule at once:
//
//	err := validator.Apply(
//		validator.ValidEmail("email", in.Email),
//		validator.StrongPassword("password", in.Password, validator.DefaultPasswordStrength()),
//	)
//
// The error is a ValidationErrors value that handlers render field by field.
package validator
