package document

import (
	"math/big"
	"strings"

	"gopkg.in/yaml.v3"
)

// BigInt is an integer literal that does not fit in int. It encodes back to
// the same digits in both formats, and Plain turns it into the *big.Int that
// jq evaluation expects.
type BigInt struct {
	*big.Int
}

// MarshalYAML writes the digits as an untagged plain scalar. Without it the
// embedded MarshalText would make yaml.v3 quote them as a string.
func (b BigInt) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: b.String()}, nil
}

// bigInteger parses a decimal integer literal with an optional sign.
func bigInteger(lit string) (BigInt, bool) {
	digits := strings.TrimLeft(lit, "+-")
	if len(lit)-len(digits) > 1 || digits == "" || strings.Trim(digits, "0123456789") != "" {
		return BigInt{}, false
	}
	n, ok := new(big.Int).SetString(strings.TrimPrefix(lit, "+"), 10)
	if !ok {
		return BigInt{}, false
	}
	return BigInt{n}, true
}

// fromBig narrows a jq result back to int when it fits.
func fromBig(n *big.Int) any {
	if n.IsInt64() {
		if i := n.Int64(); int64(int(i)) == i {
			return int(i)
		}
	}
	return BigInt{new(big.Int).Set(n)}
}
