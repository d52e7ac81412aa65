package value

import "fmt"

// Kind tags what a price means.
type Kind string

const (
	KindSale Kind = "sale" // listed, asking or transaction price
	KindMSRP Kind = "msrp" // stated regular/list price
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSale, KindMSRP:
		return k, nil
	default:
		return "", fmt.Errorf("unknown price kind %q", s)
	}
}

func (k Kind) String() string {
	return string(k)
}
