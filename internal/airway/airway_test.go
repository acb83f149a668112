package airway

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/airway/internal/clock"
	"github.com/san-kum/airway/internal/config"
	"github.com/san-kum/airway/internal/surface"
)

var _ = Describe("Airway", func() {
	Describe("construction", func() {
		It("rejects a nil surface", func() {
			_, err := New(nil, config.Options{})
			Expect(errors.Is(err, ErrSurfaceNotFound)).To(BeTrue())
		})

		It("resolves a surface by key", func() {
			doc := surface.NewDocument()
			pane := surface.NewPane(0)
			doc.Register("#airway", pane)

			a, err := NewFromKey(doc, "#airway", config.Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Surface()).To(BeIdenticalTo(pane))
		})

		It("fails with the key when lookup matches nothing", func() {
			_, err := NewFromKey(surface.NewDocument(), "#missing", config.Options{})

			var nf *SurfaceNotFoundError
			Expect(errors.As(err, &nf)).To(BeTrue())
			Expect(nf.Key).To(Equal("#missing"))
			Expect(err.Error()).To(ContainSubstring("#missing"))
		})

		It("fails without a resolver", func() {
			_, err := NewFromKey(nil, "#airway", config.Options{})
			Expect(errors.Is(err, ErrSurfaceNotFound)).To(BeTrue())
		})

		It("rejects invalid configuration listing the fields", func() {
			_, err := New(surface.NewPane(0), config.Options{
				Height:        config.Ptr(config.Height(-1)),
				ColorFromLeft: config.Ptr(""),
			})
			Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())
			Expect(config.InvalidFields(err)).To(ConsistOf("height", "colorFromLeft"))
		})

		It("merges options over defaults", func() {
			h := newHarness(config.Options{Height: config.Ptr(config.Height(64))})
			cfg := h.a.Config()
			Expect(cfg.Height).To(Equal(64))
			Expect(cfg.ColorFromLeft).To(Equal("blue"))
			Expect(cfg.Lazy).To(BeTrue())
			Expect(h.a.State()).To(Equal(Idle))
		})
	})

	Describe("Execute", func() {
		It("styles the surface once", func() {
			h := newHarness(config.Options{
				Height:          config.Ptr(config.Height(96)),
				BackgroundColor: config.Ptr("#101010"),
				Resizable:       config.Ptr(true),
				ColorFromLeft:   config.Ptr("green"),
			})
			h.a.Execute()

			Expect(h.pane.Style()).To(Equal(surface.Style{
				Background:     "#101010",
				Height:         96,
				Resizable:      true,
				ColorFromLeft:  "green",
				ColorFromRight: "red",
			}))
			Expect(h.pane.Height()).To(Equal(96))
			Expect(h.a.State()).To(Equal(Armed))
			Expect(h.a.Watching()).To(BeTrue())
		})

		It("fills to capacity and saturates with eager delays", func() {
			h := newHarness(config.Options{Height: config.Ptr(config.Height(100)), Lazy: config.Ptr(false)})
			h.a.Execute()

			Expect(h.clock.FireNext()).To(BeTrue())
			Expect(h.pane.Units()).To(HaveLen(1))
			Expect(h.a.State()).To(Equal(Armed))
			next, _ := h.clock.Next()
			Expect(next).To(Equal(h.clock.Now()))

			Expect(h.clock.FireNext()).To(BeTrue())
			Expect(h.pane.Units()).To(HaveLen(2))

			Expect(h.clock.FireNext()).To(BeTrue())
			Expect(h.pane.Units()).To(HaveLen(3))
			Expect(h.a.State()).To(Equal(Saturated))
			Expect(h.a.Pending()).To(BeFalse())
			Expect(h.logs.String()).To(ContainSubstring("Airplane limit reached!"))

			ticks := h.ticks.all()
			Expect(ticks).To(HaveLen(3))
			for _, t := range ticks {
				Expect(t.Capacity).To(Equal(3))
				Expect(t.Delay).To(BeZero())
			}
		})

		It("saturates immediately when capacity is exactly met", func() {
			h := newHarness(config.Options{Height: config.Ptr(config.Height(32))})
			h.pane.Append(surface.Unit{ID: 1000})
			h.a.Execute()

			h.clock.Advance(0)
			Expect(ids(h.pane.Units())).To(Equal([]uint64{1000}))
			Expect(h.a.State()).To(Equal(Saturated))
			Expect(h.logs.String()).NotTo(ContainSubstring("Airplane removed"))
			Expect(h.logs.String()).To(ContainSubstring("Airplane limit reached!"))
			Expect(h.clock.Pending()).To(BeZero())
		})

		It("uses randomized whole-second delays when lazy", func() {
			h := newHarness(config.Options{Height: config.Ptr(config.Height(32 * 20))})
			h.a.Execute()
			h.clock.Advance(10 * time.Minute)

			ticks := h.ticks.all()
			Expect(len(ticks)).To(BeNumerically(">", 5))
			for _, t := range ticks[:len(ticks)-1] {
				Expect(t.Delay % time.Second).To(BeZero())
				Expect(t.Delay).To(BeNumerically(">=", 3*time.Second))
				Expect(t.Delay).To(BeNumerically("<=", 6*time.Second))
			}
		})

		It("does not stack resize subscriptions", func() {
			h := newHarness(config.Options{})
			h.a.Execute()
			h.a.Execute()
			h.a.Execute()
			Expect(h.pane.Observers()).To(Equal(1))
			Expect(h.clock.Pending()).To(Equal(1))
		})
	})

	Describe("resize", func() {
		var h *harness

		BeforeEach(func() {
			h = newHarness(config.Options{Height: config.Ptr(config.Height(64)), Lazy: config.Ptr(false)})
			h.a.Execute()
			h.clock.Advance(0)
			Expect(h.a.State()).To(Equal(Saturated))
		})

		It("resumes a saturated loop with one immediate run", func() {
			before := len(h.ticks.all())
			h.pane.Resize(256)

			Expect(h.ticks.all()).To(HaveLen(before + 1))
			Expect(h.pane.Units()).To(HaveLen(3))
			Expect(h.a.State()).To(Equal(Armed))
			Expect(h.clock.Pending()).To(Equal(1))
			Expect(h.logs.String()).To(ContainSubstring("Container has been resized to: 256"))

			h.clock.Advance(0)
			Expect(h.pane.Units()).To(HaveLen(8))
			Expect(h.a.State()).To(Equal(Saturated))
		})

		It("evicts the overflow when the surface shrinks", func() {
			h.pane.Resize(32)
			Expect(ids(h.pane.Units())).To(Equal([]uint64{1}))
			Expect(h.a.State()).To(Equal(Saturated))
			Expect(strings.Count(h.logs.String(), "Airplane removed")).To(Equal(1))
		})

		It("compares against the height captured at execute", func() {
			h.pane.Resize(128)
			h.clock.Advance(0)
			runs := len(h.ticks.all())

			h.pane.Resize(64)
			Expect(h.ticks.all()).To(HaveLen(runs))
		})

		It("keeps watching after dispose", func() {
			h.a.Dispose()
			Expect(h.a.State()).To(Equal(Idle))
			Expect(h.a.Watching()).To(BeTrue())

			h.pane.Resize(128)
			Expect(h.a.State()).To(Equal(Armed))
		})

		It("stops watching after close", func() {
			h.a.Close()
			Expect(h.a.Watching()).To(BeFalse())
			runs := len(h.ticks.all())

			h.pane.Resize(128)
			Expect(h.ticks.all()).To(HaveLen(runs))
			Expect(h.a.State()).To(Equal(Idle))
			Expect(h.pane.Observers()).To(BeZero())
		})
	})

	Describe("Dispose", func() {
		It("is idempotent", func() {
			h := newHarness(config.Options{})
			h.a.Execute()

			h.a.Dispose()
			first := h.a.State()
			h.a.Dispose()

			Expect(h.a.State()).To(Equal(first))
			Expect(h.a.State()).To(Equal(Idle))
			Expect(h.a.Pending()).To(BeFalse())
			Expect(h.clock.Pending()).To(BeZero())
		})

		It("is safe before execute", func() {
			h := newHarness(config.Options{})
			h.a.Dispose()
			h.a.Close()
			Expect(h.a.State()).To(Equal(Idle))
		})
	})

	Describe("SetConfig", func() {
		It("re-merges against defaults and defers styling", func() {
			h := newHarness(config.Options{Height: config.Ptr(config.Height(64)), ColorFromLeft: config.Ptr("green")})
			h.a.Execute()

			Expect(h.a.SetConfig(config.Options{ColorFromRight: config.Ptr("orange")})).To(Succeed())
			cfg := h.a.Config()
			Expect(cfg.Height).To(Equal(130))
			Expect(cfg.ColorFromLeft).To(Equal("blue"))
			Expect(cfg.ColorFromRight).To(Equal("orange"))
			Expect(h.pane.Style().ColorFromLeft).To(Equal("green"))

			h.a.Execute()
			Expect(h.pane.Style().ColorFromRight).To(Equal("orange"))
			Expect(h.pane.Height()).To(Equal(130))
		})

		It("keeps the previous config when invalid", func() {
			h := newHarness(config.Options{Height: config.Ptr(config.Height(64))})
			err := h.a.SetConfig(config.Options{ColorFromRight: config.Ptr("")})
			Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())
			Expect(h.a.Config().Height).To(Equal(64))
		})

		It("silences logging when log is off", func() {
			h := newHarness(config.Options{Height: config.Ptr(config.Height(32)), Log: config.Ptr(false)})
			h.a.Execute()
			h.clock.Advance(time.Minute)
			Expect(h.logs.String()).To(BeEmpty())
		})
	})

	Describe("SetSurface", func() {
		It("moves the loop to the new surface", func() {
			h := newHarness(config.Options{Height: config.Ptr(config.Height(64)), Lazy: config.Ptr(false)})
			h.a.Execute()
			h.clock.Advance(0)

			next := surface.NewPane(0)
			Expect(h.a.SetSurface(next)).To(Succeed())
			Expect(h.a.Watching()).To(BeFalse())
			Expect(h.pane.Observers()).To(BeZero())

			h.a.Execute()
			h.clock.Advance(0)
			Expect(next.Units()).To(HaveLen(2))
			Expect(next.Observers()).To(Equal(1))
		})

		It("resolves keys and keeps the old binding on failure", func() {
			h := newHarness(config.Options{})
			doc := surface.NewDocument()
			other := surface.NewPane(0)
			doc.Register("#other", other)

			Expect(h.a.SetSurfaceKey(doc, "#nope")).To(MatchError(ErrSurfaceNotFound))
			Expect(h.a.Surface()).To(BeIdenticalTo(h.pane))

			Expect(h.a.SetSurfaceKey(doc, "#other")).To(Succeed())
			Expect(h.a.Surface()).To(BeIdenticalTo(other))
		})

		It("rejects nil", func() {
			h := newHarness(config.Options{})
			Expect(h.a.SetSurface(nil)).To(MatchError(ErrSurfaceNotFound))
		})
	})

	Describe("with the real clock", func() {
		It("fills the surface", func() {
			pane := surface.NewPane(0)
			a, err := New(pane, config.Options{Height: config.Ptr(config.Height(96)), Lazy: config.Ptr(false)},
				WithClock(clock.Real()))
			Expect(err).NotTo(HaveOccurred())
			a.Execute()
			defer a.Close()

			Eventually(func() int { return len(pane.Units()) }).Should(Equal(3))
			Eventually(a.State).Should(Equal(Saturated))
			Consistently(func() int { return len(pane.Units()) }, 100*time.Millisecond).Should(Equal(3))
		})
	})

	Describe("default log destination", func() {
		var (
			orig *os.File
			r, w *os.File
		)

		BeforeEach(func() {
			var err error
			r, w, err = os.Pipe()
			Expect(err).NotTo(HaveOccurred())
			orig = os.Stderr
			os.Stderr = w
			DeferCleanup(func() { os.Stderr = orig })
		})

		// run builds an airway without WithLogger, fills a 64px surface and
		// returns what was written to stderr.
		run := func(log bool) string {
			pane := surface.NewPane(0)
			c := clock.NewManual(epoch)
			a, err := New(pane, config.Options{
				Height: config.Ptr(config.Height(64)),
				Lazy:   config.Ptr(false),
				Log:    config.Ptr(log),
			}, WithClock(c))
			Expect(err).NotTo(HaveOccurred())

			a.Execute()
			c.Advance(0)
			a.Close()
			Expect(a.State()).To(Equal(Idle))
			Expect(pane.Units()).To(HaveLen(2))

			os.Stderr = orig
			Expect(w.Close()).To(Succeed())
			out, err := io.ReadAll(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Close()).To(Succeed())
			return string(out)
		}

		It("writes to stderr when logging is enabled", func() {
			out := run(true)
			Expect(out).To(ContainSubstring("Airplane limit reached!"))
			Expect(out).To(ContainSubstring("This container fits: 2 airplane(s)"))
		})

		It("stays silent when logging is disabled", func() {
			Expect(run(false)).To(BeEmpty())
		})
	})
})
