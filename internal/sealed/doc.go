// Package sealed implements the confidential-compute collaborators of the
// wager engine: client-side move encryption with a validity proof, the
// homomorphic outcome evaluator, and the decryption oracle together with the
// verifier that checks its proofs.
//
// Moves are ElGamal encryptions of m*G (Rock=0, Paper=1, Scissors=2) under
// the oracle key on ristretto255. The evaluator subtracts the two
// ciphertexts, so the outcome handle encrypts d = a-b in [-2, 2]. The oracle
// only ever publishes the class of d (first wins, second wins, draw) together
// with an OR proof that the plaintext lies in that class; d itself and both
// moves stay hidden.
package sealed
