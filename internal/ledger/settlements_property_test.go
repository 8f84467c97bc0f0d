package ledger

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestAllocateProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("parts sum to the total and stay within a cent of the exact share", prop.ForAll(
		func(total int64, weights []int64) bool {
			parts := Allocate(total, weights)
			var sum, weightSum int64
			for _, w := range weights {
				weightSum += w
			}
			for i, p := range parts {
				sum += p
				floor := total * weights[i] / weightSum
				if p < floor || p > floor+1 {
					return false
				}
			}
			return sum == total
		},
		gen.Int64Range(1, 1_000_000),
		gen.SliceOfN(6, gen.Int64Range(0, 10)).SuchThat(func(ws []int64) bool {
			for _, w := range ws {
				if w > 0 {
					return true
				}
			}
			return false
		}),
	))

	properties.TestingRun(t)
}

func TestRecommendProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("transfers settle balanced groups", prop.ForAll(
		func(raw []int64) bool {
			// Make the balances sum to zero by giving the last member the rest.
			balances := make(map[int64]int64, len(raw)+1)
			var sum int64
			for i, b := range raw {
				balances[int64(i+1)] = b
				sum += b
			}
			balances[int64(len(raw)+1)] = -sum

			recs := Recommend(balances)
			if len(recs) >= len(balances) {
				return false
			}
			for _, r := range recs {
				if r.AmountCents <= 0 || r.FromUserID == r.ToUserID {
					return false
				}
				balances[r.FromUserID] += r.AmountCents
				balances[r.ToUserID] -= r.AmountCents
			}
			for _, b := range balances {
				if b != 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(-100_000, 100_000)),
	))

	properties.TestingRun(t)
}
