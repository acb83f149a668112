package airway

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/airway/internal/logging"
	"github.com/san-kum/airway/internal/surface"
)

var _ = Describe("Population", func() {
	var (
		pane    *surface.Pane
		factory *Factory
		removed int
		pop     *Population
	)

	BeforeEach(func() {
		pane = surface.NewPane(0)
		factory = NewFactory(rand.New(rand.NewSource(3)))
		removed = 0
		pop = NewPopulation(func() surface.Surface { return pane }, factory, func(msg string, _ logging.Level, _ ...any) {
			if msg == "Airplane removed" {
				removed++
			}
		})
	})

	fill := func(n int) {
		for i := 0; i < n; i++ {
			factory.Create(pane)
		}
	}

	It("adds exactly one airplane when there is room", func() {
		pane.Resize(100)
		fill(1)

		obs := pop.Run()
		Expect(obs).To(Equal(Observation{Height: 100, Count: 2, Capacity: 3, Added: true}))
		Expect(pane.Units()).To(HaveLen(2))
		Expect(removed).To(BeZero())
	})

	It("keeps the first airplanes and evicts the tail in one run", func() {
		pane.Resize(64)
		fill(5)

		obs := pop.Run()
		Expect(obs.Removed).To(Equal(3))
		Expect(obs.Count).To(Equal(2))
		Expect(obs.Added).To(BeFalse())
		Expect(ids(pane.Units())).To(Equal([]uint64{1, 2}))
		Expect(removed).To(Equal(3))
	})

	It("treats capacity exactly met as full", func() {
		pane.Resize(32)
		fill(1)

		obs := pop.Run()
		Expect(obs.Saturated()).To(BeTrue())
		Expect(obs.Removed).To(BeZero())
		Expect(pane.Units()).To(HaveLen(1))
		Expect(removed).To(BeZero())
	})

	It("never admits on a surface shorter than one lane", func() {
		pane.Resize(31)
		fill(2)

		obs := pop.Run()
		Expect(obs.Capacity).To(BeZero())
		Expect(obs.Count).To(BeZero())
		Expect(pane.Units()).To(BeEmpty())

		obs = pop.Run()
		Expect(obs.Added).To(BeFalse())
		Expect(pane.Units()).To(BeEmpty())
	})

	It("never leaves more airplanes than capacity across runs", func() {
		heights := []int{200, 64, 0, 130, 96, 32, 500, 10}
		for _, h := range heights {
			pane.Resize(h)
			for i := 0; i < 5; i++ {
				obs := pop.Run()
				Expect(obs.Count).To(BeNumerically("<=", obs.Capacity))
				Expect(len(pane.Units())).To(BeNumerically("<=", Capacity(h)))
			}
		}
	})
})

var _ = Describe("Factory", func() {
	It("appends units with increasing ids as the last child", func() {
		pane := surface.NewPane(0)
		f := NewFactory(rand.New(rand.NewSource(11)))

		first := f.Create(pane)
		second := f.Create(pane)
		Expect(second.ID).To(BeNumerically(">", first.ID))
		Expect(pane.Units()[1]).To(Equal(second))
	})

	It("picks both orientations about equally often", func() {
		pane := surface.NewPane(0)
		f := NewFactory(rand.New(rand.NewSource(5)))

		left := 0
		const n = 4000
		for i := 0; i < n; i++ {
			if f.Create(pane).Orientation == surface.FromLeft {
				left++
			}
		}
		Expect(float64(left) / n).To(BeNumerically("~", 0.5, 0.05))
	})
})
