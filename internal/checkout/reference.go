package checkout

import "math/rand"

const (
	referencePrefix   = "JC-"
	referenceLength   = 7
	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewReference generates a human-shareable manual payment reference of the
// form JC-XXXXXXX. Not guaranteed unique; collisions are acceptable at
// storefront volume.
func NewReference() string {
	b := make([]byte, referenceLength)
	for i := range b {
		b[i] = referenceAlphabet[rand.Intn(len(referenceAlphabet))]
	}
	return referencePrefix + string(b)
}
