package classroom

import (
	"fmt"
	"math/rand/v2"
)

// ColorGenerator yields a presence color for a joining user.
type ColorGenerator func() string

// RandomHue picks a random hue with fixed saturation and lightness.
func RandomHue() string {
	return fmt.Sprintf("hsl(%d, 70%%, 60%%)", rand.IntN(360))
}
