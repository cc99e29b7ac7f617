// Package pow implements the ledger's proof-of-work stamp.
//
// The puzzle: find the smallest n >= 1 such that the hex SHA-256 digest of the
// decimal string of n² − prev⁵ starts with Difficulty zeros. Difficulty is
// fixed. The stamp is a deterministic computational cost for tamper
// evidence under a single writer, not a consensus mechanism.
package pow

import (
	"context"
	"math/big"
	"strings"

	"github.com/roach88/blockaviate/internal/block"
)

// Difficulty is the number of leading '0' hex characters a digest needs.
const Difficulty = 5

// checkInterval is how many candidates SolveContext tries between
// cancellation checks.
const checkInterval = 4096

var target = strings.Repeat("0", Difficulty)

// Solve returns the smallest n >= 1 satisfying the puzzle for prevProof.
// It blocks until a solution is found; use SolveContext to bound it.
func Solve(prevProof int64) int64 {
	n, _ := SolveContext(context.Background(), prevProof)
	return n
}

// SolveContext is Solve with cancellation. Candidates are tried in order
// n = 1, 2, 3, ... so the answer is unique and minimal. Returns ctx.Err()
// if ctx is done before a solution is found.
func SolveContext(ctx context.Context, prevProof int64) (int64, error) {
	p := prevPower(prevProof)

	var n, operand big.Int
	for candidate := int64(1); ; candidate++ {
		if candidate%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		n.SetInt64(candidate)
		if meetsTarget(puzzleOperand(&operand, &n, p)) {
			return candidate, nil
		}
	}
}

// Check reports whether n solves the puzzle for prevProof.
func Check(n, prevProof int64) bool {
	var operand big.Int
	return meetsTarget(puzzleOperand(&operand, big.NewInt(n), prevPower(prevProof)))
}

// Digest returns the hex digest the puzzle inspects for (n, prevProof).
func Digest(n, prevProof int64) string {
	var operand big.Int
	return block.HashBytes([]byte(puzzleOperand(&operand, big.NewInt(n), prevPower(prevProof)).String()))
}

// prevPower returns prevProof⁵.
func prevPower(prevProof int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(prevProof), big.NewInt(5), nil)
}

// puzzleOperand stores n² − p in dst and returns it.
func puzzleOperand(dst, n, p *big.Int) *big.Int {
	dst.Mul(n, n)
	return dst.Sub(dst, p)
}

// meetsTarget hashes the signed decimal form of operand and checks the prefix.
func meetsTarget(operand *big.Int) bool {
	digest := block.HashBytes([]byte(operand.String()))
	return strings.HasPrefix(digest, target)
}
