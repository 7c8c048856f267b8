package aggregate_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/mailboard/internal/domain/aggregate"
	"github.com/okian/mailboard/internal/domain/model"
)

func allCaps() model.Capabilities {
	return model.Capabilities{
		HasStatus: true, HasOpenedAt: true, HasUnsubscribe: true, HasReply: true,
		HasPositiveReply: true, HasWebsite: true, HasCity: true, HasState: true,
		HasESP: true, HasTraffic: true, HasGeo: true,
	}
}

// scenarioTable has 50 rows: 10 opened, 5 replies, 5 distinct valid brands
// and a handful of placeholder websites.
func scenarioTable() *model.Table {
	brands := []string{"a.com", "b.com", "c.com", "d.com", "e.com", "--", "Unknown", ""}
	rows := make([]model.Record, 50)
	for i := range rows {
		rows[i] = model.Record{
			CampaignName: fmt.Sprintf("C%d", i%4),
			LeadEmail:    fmt.Sprintf("lead%d@x.com", i%40),
			Website:      brands[i%len(brands)],
			Engagement:   []string{"HE", "LE", "NO"}[i%3],
			BotCheck:     []string{model.BotStateHuman, model.BotStateBot}[i%2],
			SentAt:       time.Date(2024, time.Month(1+i%12), 1, 0, 0, 0, 0, time.UTC),
		}
		if i < 10 {
			rows[i].OpenCount = 1
		}
		if i < 4 {
			rows[i].ClickCount = 2
		}
		if i%10 == 0 {
			rows[i].HasReply = true
			rows[i].PositiveReply = i%20 == 0
		}
		rows[i].Derive()
	}
	return &model.Table{Rows: rows, Capabilities: allCaps()}
}

func TestSummarize(t *testing.T) {
	Convey("Given 50 rows with 10 opens, 5 valid brands and 5 replies", t, func() {
		tbl := scenarioTable()

		Convey("When placeholders are excluded", func() {
			s := aggregate.Summarize(tbl, aggregate.DefaultPolicy())

			Convey("Then the reply rate is 100%", func() {
				So(s.Brands, ShouldEqual, 5)
				So(s.Replies, ShouldEqual, 5)
				So(s.ReplyRate, ShouldEqual, 100.0)
			})

			Convey("Then the scalar counts are consistent", func() {
				So(s.Sent, ShouldEqual, 50)
				So(s.Campaigns, ShouldEqual, 4)
				So(s.Prospects, ShouldEqual, 40)
				So(s.Opens, ShouldEqual, 10)
				So(s.Clicks, ShouldEqual, 4)
				So(s.OpenRate, ShouldEqual, 20.0)
				So(s.ClickRate, ShouldEqual, 40.0)
				So(s.HighEngagement+s.LowEngagement+s.NoEngagement, ShouldEqual, 50)
				So(s.Bots+s.Humans, ShouldEqual, 50)
				So(s.PositiveReplies, ShouldEqual, 3)
			})
		})

		Convey("When placeholders are counted", func() {
			s := aggregate.Summarize(tbl, aggregate.Policy{})

			Convey("Then every distinct website is a brand and the rate is clamped", func() {
				So(s.Brands, ShouldEqual, 8)
				So(s.ReplyRate, ShouldEqual, 62.5)
			})
		})
	})

	Convey("Given an empty table", t, func() {
		s := aggregate.Summarize(&model.Table{Capabilities: allCaps()}, aggregate.DefaultPolicy())

		Convey("Then every rate is exactly zero", func() {
			So(s.OpenRate, ShouldEqual, 0.0)
			So(s.ClickRate, ShouldEqual, 0.0)
			So(s.ReplyRate, ShouldEqual, 0.0)
		})
	})

	Convey("Given more replies than brands and clicks without opens", t, func() {
		rows := []model.Record{
			{Website: "a.com", HasReply: true, ClickCount: 1},
			{Website: "a.com", HasReply: true, ClickCount: 1, OpenCount: 1},
			{Website: "a.com", HasReply: true, ClickCount: 1},
		}
		s := aggregate.Summarize(&model.Table{Rows: rows, Capabilities: allCaps()}, aggregate.DefaultPolicy())

		Convey("Then rates stay within [0, 100]", func() {
			for _, rate := range []float64{s.OpenRate, s.ClickRate, s.ReplyRate} {
				So(rate, ShouldBeBetweenOrEqual, 0, 100)
			}
			So(s.ReplyRate, ShouldEqual, 100.0)
			So(s.ClickRate, ShouldEqual, 100.0)
		})
	})

	Convey("Given an upload without a website column", t, func() {
		tbl := scenarioTable()
		tbl.Capabilities.HasWebsite = false
		s := aggregate.Summarize(tbl, aggregate.DefaultPolicy())

		Convey("Then there are no brands and the reply rate is zero", func() {
			So(s.Brands, ShouldEqual, 0)
			So(s.ReplyRate, ShouldEqual, 0.0)
		})
	})
}

func TestBreakdown(t *testing.T) {
	Convey("Given rows with tied and placeholder cities", t, func() {
		cities := []string{"Rome", "Oslo", "Lima", "Oslo", "--", "Rome", "Kyiv", "", "Lima", "0"}
		rows := make([]model.Record, len(cities))
		for i, c := range cities {
			rows[i] = model.Record{City: c, OpenCount: 1, CampaignName: "A"}
		}
		rows = append(rows, model.Record{City: "Paris", OpenCount: 0})
		tbl := &model.Table{Rows: rows, Capabilities: allCaps()}

		Convey("When grouping opens by city with placeholders excluded", func() {
			groups, err := aggregate.Breakdown(tbl, aggregate.OpensByCity, aggregate.DefaultPolicy(), aggregate.All)

			Convey("Then ties keep first-encountered order and placeholders are gone", func() {
				So(err, ShouldBeNil)
				keys := make([]string, len(groups))
				for i, g := range groups {
					keys[i] = g.Key
				}
				So(keys, ShouldResemble, []string{"Rome", "Oslo", "Lima", "Kyiv"})
				So(groups[0].Count, ShouldEqual, 2)
				So(groups[3].Share, ShouldAlmostEqual, 100.0/7, 1e-9)
			})
		})

		Convey("When placeholders are counted", func() {
			groups, err := aggregate.Breakdown(tbl, aggregate.OpensByCity, aggregate.Policy{}, aggregate.All)

			So(err, ShouldBeNil)
			So(len(groups), ShouldEqual, 7)
		})

		Convey("When truncating to the top two", func() {
			groups, err := aggregate.Breakdown(tbl, aggregate.OpensByCity, aggregate.DefaultPolicy(), 2)

			So(err, ShouldBeNil)
			So(len(groups), ShouldEqual, 2)
			So(groups[1].Key, ShouldEqual, "Oslo")
		})

		Convey("When top-N exceeds the number of groups", func() {
			groups, err := aggregate.Breakdown(tbl, aggregate.OpensByCity, aggregate.DefaultPolicy(), aggregate.Top20)

			So(err, ShouldBeNil)
			So(len(groups), ShouldEqual, 4)
		})
	})

	Convey("Given a table without optional columns", t, func() {
		tbl := &model.Table{Rows: []model.Record{{OpenCount: 1, TimeRange: "AM"}}}

		Convey("Then dependent breakdowns are unavailable", func() {
			for _, d := range []aggregate.Dimension{aggregate.OpensByCity, aggregate.OpensByESP, aggregate.OpensByState,
				aggregate.UnsubscribesByCampaign, aggregate.TrafficShare, aggregate.HighEngagementByWebsite} {
				_, err := aggregate.Breakdown(tbl, d, aggregate.DefaultPolicy(), aggregate.All)
				So(errors.Is(err, aggregate.ErrUnavailable), ShouldBeTrue)
			}
		})

		Convey("Then time ranges still group", func() {
			groups, err := aggregate.Breakdown(tbl, aggregate.OpensByTimeRange, aggregate.DefaultPolicy(), aggregate.All)
			So(err, ShouldBeNil)
			So(groups, ShouldResemble, []aggregate.Group{{Key: "AM", Count: 1, Share: 100}})
		})

		Convey("Then an unknown dimension is rejected", func() {
			_, err := aggregate.Breakdown(tbl, "opens_by_planet", aggregate.DefaultPolicy(), aggregate.All)
			So(errors.Is(err, aggregate.ErrUnknownDimension), ShouldBeTrue)
		})
	})

	Convey("Given every dimension over the scenario table", t, func() {
		tbl := scenarioTable()
		tbl.Rows[1].IsUnsubscribed = true
		tbl.Rows[2].Traffic = "Organic"

		Convey("Then each grouping succeeds", func() {
			for _, d := range aggregate.Dimensions() {
				_, err := aggregate.Breakdown(tbl, d, aggregate.DefaultPolicy(), aggregate.Top5)
				So(err, ShouldBeNil)
				So(d.Title(), ShouldNotBeBlank)
				So(aggregate.Advice(d), ShouldNotBeBlank)
			}
		})

		Convey("Then HE by website counts only high-engagement rows", func() {
			groups, err := aggregate.Breakdown(tbl, aggregate.HighEngagementByWebsite, aggregate.DefaultPolicy(), aggregate.All)
			So(err, ShouldBeNil)
			total := 0
			for _, g := range groups {
				total += g.Count
			}
			So(total, ShouldBeLessThanOrEqualTo, aggregate.Summarize(tbl, aggregate.DefaultPolicy()).HighEngagement)
		})

		Convey("Then unsubscribes group by campaign", func() {
			groups, err := aggregate.Breakdown(tbl, aggregate.UnsubscribesByCampaign, aggregate.DefaultPolicy(), aggregate.All)
			So(err, ShouldBeNil)
			So(groups, ShouldHaveLength, 1)
			So(groups[0].Key, ShouldEqual, "C1")
		})
	})
}

func TestParseTopN(t *testing.T) {
	Convey("Given top-N selectors", t, func() {
		for in, want := range map[string]aggregate.TopN{"": aggregate.Top5, "5": aggregate.Top5, "10": aggregate.Top10, "20": aggregate.Top20, "ALL": aggregate.All} {
			got, err := aggregate.ParseTopN(in, aggregate.Top5)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}
		for _, in := range []string{"7", "-1", "many"} {
			_, err := aggregate.ParseTopN(in, aggregate.Top5)
			So(errors.Is(err, aggregate.ErrInvalidTopN), ShouldBeTrue)
		}
		So(aggregate.All.String(), ShouldEqual, "all")
		So(aggregate.Top10.String(), ShouldEqual, "10")
	})
}

func TestCityGeo(t *testing.T) {
	Convey("Given opened rows with coordinates", t, func() {
		rows := []model.Record{
			{City: "Rome", Latitude: 41.9, Longitude: 12.5, HasCoords: true, OpenCount: 2, ClickCount: 1},
			{City: "Oslo", Latitude: 59.9, Longitude: 10.7, HasCoords: true, OpenCount: 5},
			{City: "Rome", Latitude: 41.9, Longitude: 12.5, HasCoords: true, OpenCount: 4, ClickCount: 2},
			{City: "Unknown", Latitude: 1, Longitude: 1, HasCoords: true, OpenCount: 9},
			{City: "Lima", OpenCount: 7},
			{City: "Nuuk", Latitude: 64.2, Longitude: -51.7, HasCoords: true},
		}
		tbl := &model.Table{Rows: rows, Capabilities: allCaps()}

		points, err := aggregate.CityGeo(tbl, aggregate.DefaultPolicy(), aggregate.Top5)

		Convey("Then sums are per city and location, ordered by opens", func() {
			So(err, ShouldBeNil)
			So(points, ShouldHaveLength, 2)
			So(points[0].City, ShouldEqual, "Rome")
			So(points[0].Opens, ShouldEqual, 6)
			So(points[0].Clicks, ShouldEqual, 3)
			So(points[1].City, ShouldEqual, "Oslo")
		})

		Convey("Then geography is unavailable without coordinates", func() {
			tbl.Capabilities.HasGeo = false
			_, err := aggregate.CityGeo(tbl, aggregate.DefaultPolicy(), aggregate.Top5)
			So(errors.Is(err, aggregate.ErrUnavailable), ShouldBeTrue)
		})
	})
}

func TestCampaignTables(t *testing.T) {
	Convey("Given the scenario table", t, func() {
		tbl := scenarioTable()

		Convey("When summarizing replies per campaign", func() {
			replies := aggregate.CampaignReplies(tbl)

			Convey("Then campaigns are sorted with sent counts and rates", func() {
				So(replies, ShouldHaveLength, 4)
				So(replies[0].Campaign, ShouldEqual, "C0")
				So(replies[0].Sent, ShouldEqual, 13)
				So(replies[0].Replied, ShouldEqual, 3)
				So(replies[0].ReplyRate, ShouldEqual, 23.08)
				So(replies[0].FirstSent, ShouldEqual, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
				total := 0
				for _, r := range replies {
					total += r.Sent
				}
				So(total, ShouldEqual, 50)
			})
		})

		Convey("When ranking campaign leaders", func() {
			leaders := aggregate.CampaignLeaders(tbl, aggregate.Top5)

			Convey("Then they are ordered by summed opens with name order among ties", func() {
				So(leaders, ShouldHaveLength, 4)
				So(leaders[0].Campaign, ShouldEqual, "C0")
				So(leaders[0].Opens, ShouldEqual, 3)
				So(leaders[1].Campaign, ShouldEqual, "C1")
				So(leaders[2].Campaign, ShouldEqual, "C2")
				So(leaders[2].Opens, ShouldEqual, 2)
			})
		})
	})
}

func TestCompareQuarters(t *testing.T) {
	Convey("Given the scenario table spanning all quarters", t, func() {
		tbl := scenarioTable()

		Convey("When comparing Q1 and Q3", func() {
			cmp, err := aggregate.CompareQuarters(tbl, []int{1, 3, 1}, aggregate.DefaultPolicy(), aggregate.Top5)

			Convey("Then each quarter is summarized once", func() {
				So(err, ShouldBeNil)
				So(cmp, ShouldHaveLength, 2)
				So(cmp[0].Label, ShouldEqual, "Q1")
				So(cmp[1].Quarter, ShouldEqual, 3)
				for _, q := range cmp {
					So(q.Summary.Sent, ShouldBeGreaterThan, 0)
				}
			})
		})

		Convey("When fewer than two quarters are selected", func() {
			_, err := aggregate.CompareQuarters(tbl, []int{2, 2}, aggregate.DefaultPolicy(), aggregate.Top5)
			So(errors.Is(err, aggregate.ErrTooFewQuarters), ShouldBeTrue)
		})

		Convey("When a quarter is out of range", func() {
			_, err := aggregate.CompareQuarters(tbl, []int{1, 5}, aggregate.DefaultPolicy(), aggregate.Top5)
			So(errors.Is(err, aggregate.ErrInvalidQuarter), ShouldBeTrue)
		})
	})
}

func TestFormatter(t *testing.T) {
	Convey("Given the abbreviated formatter", t, func() {
		f := aggregate.NewFormatter(false)

		So(f.Count(999), ShouldEqual, "999")
		So(f.Count(1_234), ShouldEqual, "1.2K")
		So(f.Count(2_500_000), ShouldEqual, "2.5M")
		So(f.Percent(12.345), ShouldEqual, "12.3%")
	})

	Convey("Given the full formatter", t, func() {
		f := aggregate.NewFormatter(true)

		So(f.Count(1_234_567), ShouldEqual, "1,234,567")
		So(f.Count(12), ShouldEqual, "12")
	})

	Convey("Given a zero-value formatter in full mode", t, func() {
		So(aggregate.Formatter{Full: true}.Count(1000), ShouldEqual, "1,000")
	})

	Convey("Given a summary", t, func() {
		s := aggregate.Summarize(scenarioTable(), aggregate.DefaultPolicy())

		Convey("Then formatting does not change the values", func() {
			before := s
			out := aggregate.NewFormatter(false).Summary(s)
			So(out["reply_rate"], ShouldEqual, "100.0%")
			So(out["sent"], ShouldEqual, "50")
			So(s.Sent, ShouldEqual, before.Sent)
		})

		Convey("Then takeaways mention the headline numbers", func() {
			lines := aggregate.Takeaways(s, aggregate.NewFormatter(true))
			So(lines, ShouldHaveLength, 4)
			So(lines[0], ShouldContainSubstring, "4 campaigns reached 40 unique prospects")
			So(lines[2], ShouldContainSubstring, "based on 5 unique brands")
		})
	})
}

func TestNotices(t *testing.T) {
	Convey("Given an empty selection", t, func() {
		tbl := &model.Table{}
		notices := aggregate.Notices(tbl, aggregate.Summarize(tbl, aggregate.DefaultPolicy()))

		So(notices, ShouldHaveLength, 1)
		So(notices[0].Section, ShouldEqual, "filter")
		So(errors.Is(notices[0], aggregate.ErrEmptyResult), ShouldBeTrue)
	})

	Convey("Given rows without any HE engagement", t, func() {
		tbl := &model.Table{Rows: []model.Record{{Engagement: "LE"}}}
		notices := aggregate.Notices(tbl, aggregate.Summarize(tbl, aggregate.DefaultPolicy()))

		So(notices, ShouldHaveLength, 1)
		So(notices[0].Section, ShouldEqual, "engagement")
	})

	Convey("Given a grouping", t, func() {
		So(aggregate.GroupNotice("opens_by_city", 3), ShouldBeNil)
		So(aggregate.GroupNotice("opens_by_city", 0), ShouldNotBeNil)
	})
}
