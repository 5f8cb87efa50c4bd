package utils

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var mu sync.Mutex
var seededRand *rand.Rand

func init() {
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// GenerateOrderID builds a public transaction reference. Uniqueness is
// enforced by the column index; collisions here are practically impossible
// within one nanosecond bucket.
func GenerateOrderID(buyerID uint) string {
	mu.Lock()
	defer mu.Unlock()

	nowNano := time.Now().UnixNano()
	nanoPart := nowNano % 1000000

	randPart := seededRand.Intn(900) + 100

	return fmt.Sprintf("EDU-%06d%03d%d", nanoPart, randPart, buyerID)
}
