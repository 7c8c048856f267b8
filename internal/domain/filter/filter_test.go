package filter_test

import (
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/mailboard/internal/domain/filter"
	"github.com/okian/mailboard/internal/domain/model"
)

// table builds n rows cycling through campaigns, bot states, time ranges
// and the quarters of 2023 and 2024.
func table(n int) *model.Table {
	campaigns := []string{"Alpha", "Beta", "Gamma"}
	bots := []string{model.BotStateHuman, model.BotStateBot}
	ranges := []string{"Morning", "Afternoon", "Evening", "Night"}
	rows := make([]model.Record, n)
	for i := range rows {
		rows[i] = model.Record{
			CampaignName: campaigns[i%len(campaigns)],
			LeadEmail:    fmt.Sprintf("lead%03d@example.com", i),
			SentAt:       time.Date(2023+i%2, time.Month(1+(i*5)%12), 1+i%28, 9, 0, 0, 0, time.UTC),
			BotCheck:     bots[i%len(bots)],
			TimeRange:    ranges[i%len(ranges)],
			OpenCount:    i % 3,
		}
		rows[i].Derive()
	}
	return &model.Table{Rows: rows}
}

func TestApply(t *testing.T) {
	Convey("Given a 100-row table", t, func() {
		tbl := table(100)
		all := filter.Defaults(tbl)

		Convey("When every dimension defaults to all known values", func() {
			out := filter.Apply(tbl, all)

			Convey("Then every row is kept in order", func() {
				So(out.Len(), ShouldEqual, 100)
				So(out.Rows, ShouldResemble, tbl.Rows)
			})
		})

		Convey("When the year set is empty", func() {
			sel := all
			sel.Years = filter.NewSet[int]()

			Convey("Then the result is empty regardless of the other sets", func() {
				So(filter.Apply(tbl, sel).Len(), ShouldEqual, 0)
			})
		})

		Convey("When any single dimension is nil", func() {
			sel := all
			sel.TimeRanges = nil

			So(filter.Apply(tbl, sel).Len(), ShouldEqual, 0)
		})

		Convey("When filtering by one campaign and bot state", func() {
			sel := all
			sel.Campaigns = filter.NewSet("Beta")
			sel.BotStates = filter.NewSet(model.BotStateBot)
			out := filter.Apply(tbl, sel)

			Convey("Then only matching rows remain in their original relative order", func() {
				So(out.Len(), ShouldBeGreaterThan, 0)
				last := ""
				for _, r := range out.Rows {
					So(r.CampaignName, ShouldEqual, "Beta")
					So(r.BotCheck, ShouldEqual, model.BotStateBot)
					So(r.LeadEmail, ShouldBeGreaterThan, last)
					last = r.LeadEmail
				}
			})

			Convey("Then filtering the result again changes nothing", func() {
				again := filter.Apply(out, sel)
				So(again.Rows, ShouldResemble, out.Rows)
			})

			Convey("Then the input table is untouched", func() {
				So(tbl.Len(), ShouldEqual, 100)
			})
		})

		Convey("When a predicate set is narrowed step by step", func() {
			sel := all
			prev := filter.Apply(tbl, sel).Len()
			for _, qs := range [][]int{{1, 2, 3}, {1, 3}, {3}, {}} {
				sel.Quarters = filter.NewSet(qs...)
				n := filter.Apply(tbl, sel).Len()

				Convey(fmt.Sprintf("Then quarters %v never add rows", qs), func() {
					So(n, ShouldBeLessThanOrEqualTo, prev)
				})
				prev = n
			}
		})
	})

	Convey("Given rows whose send date did not parse", t, func() {
		tbl := table(10)
		tbl.Rows[3].SentAt = time.Time{}
		tbl.Rows[3].Derive()
		sel := filter.Defaults(tbl)
		sel.Years[0] = struct{}{}

		Convey("Then they are excluded by the year filter even if 0 is selected", func() {
			out := filter.Apply(tbl, sel)
			So(out.Len(), ShouldEqual, 9)
			for _, r := range out.Rows {
				So(r.HasSentAt(), ShouldBeTrue)
			}
		})
	})

	Convey("Given a nil table", t, func() {
		So(filter.Apply(nil, filter.Selection{}).Len(), ShouldEqual, 0)
	})
}

func TestOptionsOf(t *testing.T) {
	Convey("Given a table with mixed values", t, func() {
		tbl := table(8)
		tbl.Rows[0].SentAt = time.Time{}
		tbl.Rows[0].Derive()

		opts := filter.OptionsOf(tbl)

		Convey("Then years are sorted and exclude null", func() {
			So(opts.Years, ShouldResemble, []int{2023, 2024})
		})

		Convey("Then quarters always span 1..4", func() {
			So(opts.Quarters, ShouldResemble, []int{1, 2, 3, 4})
		})

		Convey("Then campaigns are sorted and categorical values keep first-seen order", func() {
			So(opts.Campaigns, ShouldResemble, []string{"Alpha", "Beta", "Gamma"})
			So(opts.BotStates, ShouldResemble, []string{model.BotStateHuman, model.BotStateBot})
			So(opts.TimeRanges, ShouldResemble, []string{"Morning", "Afternoon", "Evening", "Night"})
		})

		Convey("Then the selection round-trips", func() {
			sel := opts.Selection()
			So(sel.Years.Has(2024), ShouldBeTrue)
			So(filter.Sorted(sel.Campaigns), ShouldResemble, opts.Campaigns)
		})
	})

	Convey("Given an empty table", t, func() {
		opts := filter.OptionsOf(&model.Table{})

		So(opts.Years, ShouldBeEmpty)
		So(opts.BotStates, ShouldNotBeNil)
		So(opts.TimeRanges, ShouldNotBeNil)
	})
}
