// Package password owns the password credential surface: the strength
// policy applied at registration time and Argon2id hashing/verification
// of the stored credential.
//
// Design goals:
//   - One configuration surface (Config) sourced from env + defaults.
//   - Strict PHC decoding and anti-DoS bounds during Verify.
//   - Policy is a pure predicate; hashing never stores or logs the plaintext.
package password
