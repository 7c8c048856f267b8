package chart_test

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/mailboard/internal/adapters/chart"
)

func TestRender(t *testing.T) {
	Convey("Given chart specs", t, func() {
		var buf bytes.Buffer

		Convey("When rendering a bar chart", func() {
			err := chart.Render(&buf, chart.Spec{
				Kind: chart.KindBar, Title: "Opens by Campaign",
				Labels: []string{"Spring launch", "Summer", ""}, Values: []float64{12, 7, 3},
			})

			Convey("Then a PNG of the default size is written", func() {
				So(err, ShouldBeNil)
				img, err := png.Decode(&buf)
				So(err, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldEqual, 1024)
				So(img.Bounds().Dy(), ShouldEqual, 512)
			})
		})

		Convey("When rendering a pie chart", func() {
			err := chart.Render(&buf, chart.Spec{
				Kind: chart.KindPie, Labels: []string{"HE", "LE", "NO"}, Values: []float64{5, 3, 2}, Width: 300, Height: 400,
			})

			Convey("Then the image is square", func() {
				So(err, ShouldBeNil)
				img, err := png.Decode(&buf)
				So(err, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldEqual, 300)
				So(img.Bounds().Dy(), ShouldEqual, 300)
			})
		})

		Convey("When rendering a forecast line", func() {
			start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
			var times []time.Time
			var vals, lo, hi []float64
			for i := 0; i < 10; i++ {
				times = append(times, start.AddDate(0, 0, i))
				vals = append(vals, float64(i))
				lo = append(lo, float64(i)-1)
				hi = append(hi, float64(i)+1)
			}
			err := chart.Render(&buf, chart.Spec{Kind: chart.KindLine, Times: times, Values: vals, Lower: lo, Upper: hi, Actual: vals})

			So(err, ShouldBeNil)
			So(buf.Len(), ShouldBeGreaterThan, 0)
		})

		Convey("When rendering a single point line", func() {
			err := chart.Render(&buf, chart.Spec{
				Kind: chart.KindLine, Times: []time.Time{time.Now()}, Values: []float64{3},
			})

			So(err, ShouldBeNil)
		})

		Convey("When there is no data", func() {
			So(errors.Is(chart.Render(&buf, chart.Spec{Kind: chart.KindBar}), chart.ErrEmptyChart), ShouldBeTrue)
			So(errors.Is(chart.Render(&buf, chart.Spec{
				Kind: chart.KindPie, Labels: []string{"a"}, Values: []float64{0},
			}), chart.ErrEmptyChart), ShouldBeTrue)
		})

		Convey("When inputs are inconsistent", func() {
			err := chart.Render(&buf, chart.Spec{Kind: chart.KindBar, Labels: []string{"a"}, Values: []float64{1, 2}})
			So(errors.Is(err, chart.ErrMismatch), ShouldBeTrue)

			err = chart.Render(&buf, chart.Spec{Kind: "radar", Values: []float64{1}})
			So(errors.Is(err, chart.ErrUnknownKind), ShouldBeTrue)
		})
	})
}
