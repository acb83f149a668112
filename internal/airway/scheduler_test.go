package airway

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/airway/internal/clock"
)

var _ = Describe("Scheduler", func() {
	var (
		c        *clock.Manual
		count    int
		capacity int
		steps    int
		sched    *Scheduler
	)

	BeforeEach(func() {
		c = clock.NewManual(epoch)
		count, capacity, steps = 0, 3, 0
		step := func() Observation {
			steps++
			if count < capacity {
				count++
				return Observation{Count: count, Capacity: capacity, Added: true}
			}
			count = capacity
			return Observation{Count: count, Capacity: capacity}
		}
		sched = NewScheduler(c, step, func() time.Duration { return 2 * time.Second }, nil)
	})

	It("starts idle", func() {
		Expect(sched.State()).To(Equal(Idle))
		Expect(sched.Pending()).To(BeFalse())
	})

	It("arms a zero-delay tick on start without running the step", func() {
		sched.Start()
		Expect(sched.State()).To(Equal(Armed))
		Expect(steps).To(BeZero())

		next, ok := c.Next()
		Expect(ok).To(BeTrue())
		Expect(next).To(Equal(epoch))
	})

	It("re-arms after each tick until saturated", func() {
		sched.Start()

		Expect(c.FireNext()).To(BeTrue())
		Expect(sched.State()).To(Equal(Armed))
		next, _ := c.Next()
		Expect(next.Sub(c.Now())).To(Equal(2 * time.Second))

		c.Advance(time.Minute)
		Expect(steps).To(Equal(3))
		Expect(sched.State()).To(Equal(Saturated))
		Expect(sched.Pending()).To(BeFalse())
		Expect(c.Pending()).To(BeZero())
	})

	It("runs the step synchronously on trigger", func() {
		sched.Trigger()
		Expect(steps).To(Equal(1))
		Expect(sched.State()).To(Equal(Armed))
		Expect(c.Pending()).To(Equal(1))
	})

	It("keeps a single pending timer across repeated triggers", func() {
		capacity = 10
		for i := 0; i < 5; i++ {
			sched.Trigger()
			sched.Start()
		}
		Expect(c.Pending()).To(Equal(1))
	})

	It("resumes from saturated only when triggered", func() {
		sched.Start()
		c.Advance(time.Minute)
		Expect(sched.State()).To(Equal(Saturated))

		c.Advance(time.Hour)
		Expect(steps).To(Equal(3))

		capacity = 5
		sched.Trigger()
		Expect(steps).To(Equal(4))
		Expect(sched.State()).To(Equal(Armed))
	})

	It("disposes idempotently from any state", func() {
		sched.Start()
		sched.Dispose()
		Expect(sched.State()).To(Equal(Idle))
		Expect(c.Pending()).To(BeZero())

		sched.Dispose()
		Expect(sched.State()).To(Equal(Idle))
		Expect(sched.Pending()).To(BeFalse())

		c.Advance(time.Hour)
		Expect(steps).To(BeZero())
	})

	It("ignores a callback from a timer that was already cleared", func() {
		sched.Start()
		stale := sched.gen
		sched.Dispose()

		sched.fire(stale)
		Expect(steps).To(BeZero())
		Expect(sched.State()).To(Equal(Idle))
	})

	It("reports every tick to observers", func() {
		var seen []Tick
		sched.AddObserver(ObserverFunc(func(t Tick) { seen = append(seen, t) }))

		sched.Start()
		c.Advance(time.Minute)

		Expect(seen).To(HaveLen(3))
		Expect(seen[0].State).To(Equal(Armed))
		Expect(seen[0].Delay).To(Equal(2 * time.Second))
		Expect(seen[2].State).To(Equal(Saturated))
		Expect(seen[2].Delay).To(BeZero())
		Expect(sched.Ticks()).To(Equal(3))
	})
})
