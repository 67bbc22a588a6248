// Package auth provides credential primitives (JWT issuance and
// verification, bcrypt password hashing, password reset flows) plus a
// Bun-backed user repository and a JSON HTTP surface.
//
// Token issuance:
//   - TokenIssuer signs an (access, refresh) pair with independent HMAC
//     secrets held in an immutable SigningConfig. Freshen exchanges a valid
//     refresh token for a new access token after re-validating the refresh
//     claims under the strictest rules, regardless of configured leniency.
//   - TokenCodec is the low-level sign/verify layer. Verification always
//     pins the HS256 method; lifetime, issuer, and audience checks follow
//     the VerifyOptions flags.
//
// Password resets:
//   - PasswordResetFlow drives active -> reset-pending -> active. While a
//     reset is pending the stored password hash is cleared, so the account
//     cannot log in until the reset completes or the token expires.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther, the
//     registration handler, and the reset flow to describe login, token
//     refresh, registration, and password reset events. Sinks run
//     best-effort (errors are logged) so you can forward to a database or
//     queue without blocking authentication.
//
// Claims decoration:
//   - ClaimsDecorator is invoked before JWTs are signed. Decorators may
//     enrich extension fields while protected claims (sub, iss, aud, exp,
//     etc.) remain immutable.
package auth
