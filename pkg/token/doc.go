// Package token creates compact signed tokens carrying a JSON payload, used
// for single-purpose links such as password reset.
//
//	tok, err := token.Generate(ResetPayload{UserID: id, Exp: exp}, secret)
//	payload, err := token.Parse[ResetPayload](tok, secret)
//
// Tokens are tamper-evident, not encrypted: do not put secrets in payloads.
// Expiry and purpose checks belong to the payload type.
package token
