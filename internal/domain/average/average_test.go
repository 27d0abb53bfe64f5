package average_test

import (
	"errors"
	"testing"

	"github.com/okian/fairway/internal/domain/average"
	"github.com/okian/fairway/internal/domain/settings"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSimple(t *testing.T) {
	Convey("Given the simple average", t, func() {
		s := average.Simple{}

		Convey("When rounds exist", func() {
			So(s.Compute(45, []int{42, 48}), ShouldEqual, 45.0)
			So(s.Compute(44, []int{41}), ShouldEqual, 42.5)
			So(s.Compute(40, []int{41, 41}), ShouldEqual, 40.67)
		})

		Convey("When no rounds are eligible", func() {
			So(s.Compute(43.333, nil), ShouldEqual, 43.333)
		})

		Convey("When the mean lands on a midpoint", func() {
			// 361 / 8 = 45.125
			So(s.Compute(45, []int{45, 45, 45, 45, 45, 45, 46}), ShouldEqual, 45.12)
			// 363 / 8 = 45.375
			So(s.Compute(45, []int{45, 45, 45, 45, 45, 46, 47}), ShouldEqual, 45.38)
		})
	})
}

func TestRound2(t *testing.T) {
	Convey("Midpoints round to the even neighbour", t, func() {
		So(average.Round2(45.125), ShouldEqual, 45.12)
		So(average.Round2(45.135), ShouldEqual, 45.14)
		So(average.Round2(2.675), ShouldEqual, 2.68)
		So(average.Round2(40.666), ShouldEqual, 40.67)
	})
}

func TestLegacyWeighted(t *testing.T) {
	Convey("Given weight 4 and baseline 90", t, func() {
		s := average.LegacyWeighted{Weight: 4}

		Convey("When two rounds of 85 and 95 are played", func() {
			got := s.Compute(90, []int{85, 95})

			Convey("Then avg = (90*4 + 85 + 95) / (4+2)", func() {
				So(got, ShouldEqual, (90.0*4+85+95)/6)
				So(got, ShouldEqual, 90.0)
			})
		})

		Convey("When the rounds pull the average down", func() {
			So(s.Compute(90, []int{80, 80}), ShouldEqual, 86.67)
		})
	})

	Convey("Given a zero weight and no rounds", t, func() {
		s := average.LegacyWeighted{Weight: 0}

		Convey("Then the baseline is returned rather than dividing by zero", func() {
			So(s.Compute(47.5, nil), ShouldEqual, 47.5)
			So(s.Compute(47.5, []int{45}), ShouldEqual, 45.0)
		})
	})
}

func TestMonotonicBound(t *testing.T) {
	Convey("Adding a score between the average and the sample extreme keeps the new average between them", t, func() {
		s := average.Simple{}
		base := []int{50, 50}
		before := s.Compute(40, base) // 46.67
		after := s.Compute(40, append(base, 48))

		So(after, ShouldBeGreaterThan, before)
		So(after, ShouldBeLessThan, 48)

		lw := average.LegacyWeighted{Weight: 4}
		before = lw.Compute(45, []int{41, 43})    // 44
		after = lw.Compute(45, []int{41, 43, 42}) // 43.71
		So(after, ShouldBeLessThan, before)
		So(after, ShouldBeGreaterThan, 42)
	})
}

func TestSelect(t *testing.T) {
	Convey("Given settings", t, func() {
		cfg := settings.Default()

		Convey("When the method is simple", func() {
			s, err := average.Select(cfg)
			So(err, ShouldBeNil)
			So(s.Method(), ShouldEqual, settings.AverageSimple)
		})

		Convey("When the method is legacy weighted", func() {
			cfg.AverageMethod = settings.AverageLegacyWeighted
			cfg.LegacyInitialWeight = 4
			got, err := average.Compute(cfg, 90, []int{85, 95})
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 90.0)
		})

		Convey("When the method is unknown", func() {
			cfg.AverageMethod = "median"
			_, err := average.Select(cfg)
			So(errors.Is(err, settings.ErrInvalidConfiguration), ShouldBeTrue)
		})

		Convey("When computing twice", func() {
			a, _ := average.Compute(cfg, 44.5, []int{41, 47, 39})
			b, _ := average.Compute(cfg, 44.5, []int{41, 47, 39})
			So(a, ShouldEqual, b)
		})
	})
}
