package airway

import (
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Capacity", func() {
	DescribeTable("lanes of 32px",
		func(height, expected int) {
			Expect(Capacity(height)).To(Equal(expected))
		},
		Entry("negative", -10, 0),
		Entry("empty", 0, 0),
		Entry("just short of a lane", 31, 0),
		Entry("one lane", 32, 1),
		Entry("just short of two", 63, 1),
		Entry("two lanes", 64, 2),
		Entry("100px", 100, 3),
		Entry("default height", 130, 4),
	)

	It("is floor(h/32) for every height", func() {
		for h := 0; h <= 1024; h++ {
			Expect(Capacity(h)).To(Equal(h/32), "height %d", h)
		}
	})
})

var _ = Describe("Delay", func() {
	It("is a whole number of seconds in [3s, 6s] when lazy", func() {
		rng := rand.New(rand.NewSource(1))
		seen := make(map[time.Duration]bool)

		for i := 0; i < 1000; i++ {
			d := Delay(true, rng)
			Expect(d % time.Second).To(BeZero())
			Expect(d).To(BeNumerically(">=", 3*time.Second))
			Expect(d).To(BeNumerically("<=", 6*time.Second))
			seen[d] = true
		}
		Expect(seen).To(HaveLen(4))
	})

	It("is zero when eager", func() {
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 100; i++ {
			Expect(Delay(false, rng)).To(BeZero())
		}
	})
})

var _ = DescribeTable("Resized",
	func(previous, next int, expected bool) {
		Expect(Resized(previous, next)).To(Equal(expected))
	},
	Entry("unchanged", 100, 100, false),
	Entry("grown", 100, 200, true),
	Entry("shrunk", 100, 31, true),
	Entry("to zero", 32, 0, true),
)

var _ = DescribeTable("State names",
	func(s State, expected string) {
		Expect(s.String()).To(Equal(expected))
	},
	Entry(nil, Idle, "idle"),
	Entry(nil, Armed, "armed"),
	Entry(nil, Saturated, "saturated"),
	Entry(nil, State(7), "unknown"),
)
