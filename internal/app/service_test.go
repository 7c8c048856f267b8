package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	service "github.com/okian/mailboard/internal/app"
	"github.com/okian/mailboard/internal/adapters/repository"
	"github.com/okian/mailboard/internal/adapters/session"
	"github.com/okian/mailboard/internal/domain/aggregate"
	"github.com/okian/mailboard/internal/domain/ingest"
	"github.com/okian/mailboard/internal/domain/insight"
	"github.com/okian/mailboard/internal/sampledata"
	"github.com/okian/mailboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const smallCSV = `Campaign Name,Lead Email,Sent_Date,Opened Time,Open Count,Click Count,Engagement,Bot Check,Opend Time Range,Status
Spring,a@x.com,2024-01-15 10:00:00,2024-01-15 11:00:00,1,0,le,Human,Morning,Delivered
Spring,b@x.com,2024-02-20 10:00:00,,0,0,NO,Bot,Morning,bounced
Summer,c@y.com,2024-07-04 18:00:00,2024-07-05 09:00:00,2,1,HE,Human,Evening,Delivered
`

func sampleCSV(rows int, seed uint64) []byte {
	var buf bytes.Buffer
	if err := sampledata.WriteCSV(&buf, sampledata.NewGenerator(seed).Rows(rows)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func startedService(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(
			service.WithChunkSize(500),
			service.WithCacheEntries(2),
			service.WithDefaultTopN(aggregate.Top10),
		)

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should return basic stats", func() {
				So(stats["started"], ShouldEqual, false)
				So(stats["chunkSize"], ShouldEqual, 500)
				So(stats["defaultTopN"], ShouldEqual, "10")
			})
		})

		Convey("When using it before Start", func() {
			_, err := svc.Ingest(context.Background(), "a.csv", strings.NewReader(smallCSV), -1)

			Convey("Then it should refuse", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When starting and stopping the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			started := svc.GetStats()
			svc.Stop()
			svc.Stop()

			Convey("Then stats follow the state", func() {
				So(started["started"], ShouldEqual, true)
				So(started["cachedDatasets"], ShouldEqual, 0)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Ingest(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(service.WithUploadDir(t.TempDir()))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When a CSV with a bounced row is uploaded", func() {
			up, err := svc.Ingest(ctx, "campaigns.csv", strings.NewReader(smallCSV), int64(len(smallCSV)))
			So(err, ShouldBeNil)

			Convey("Then the bounced row is dropped and the source is described", func() {
				So(up.Cached, ShouldBeFalse)
				So(up.Table.Len(), ShouldEqual, 2)
				So(up.Table.Source.BouncedRows, ShouldEqual, 1)
				So(up.Table.Source.Name, ShouldEqual, "campaigns.csv")
				So(up.Table.Source.SizeBytes, ShouldEqual, int64(len(smallCSV)))
				So(len(up.Table.Source.ID), ShouldEqual, 64)
				So(up.Table.Rows[0].Engagement, ShouldEqual, "LE")
			})

			Convey("Then the same bytes are served from cache", func() {
				again, err := svc.Ingest(ctx, "renamed.csv", strings.NewReader(smallCSV), -1)
				So(err, ShouldBeNil)
				So(again.Cached, ShouldBeTrue)
				So(again.Table, ShouldEqual, up.Table)
			})

			Convey("Then a new upload replaces the cached table", func() {
				other, err := svc.Ingest(ctx, "other.csv", bytes.NewReader(sampleCSV(20, 1)), -1)
				So(err, ShouldBeNil)
				So(other.Table.Source.ID, ShouldNotEqual, up.Table.Source.ID)

				_, err = svc.Dataset(ctx, up.Table.Source.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then it can be dropped", func() {
				So(svc.DropDataset(ctx, up.Table.Source.ID), ShouldBeNil)
				So(errors.Is(svc.DropDataset(ctx, up.Table.Source.ID), repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the upload is rejected", func() {
			Convey("Then a missing file name is an error", func() {
				_, err := svc.Ingest(ctx, "", strings.NewReader(smallCSV), -1)
				So(errors.Is(err, service.ErrNoFilename), ShouldBeTrue)
			})

			Convey("Then an unknown extension is a load error", func() {
				_, err := svc.Ingest(ctx, "data.json", strings.NewReader(smallCSV), -1)
				So(errors.Is(err, ingest.ErrLoad), ShouldBeTrue)
				So(errors.Is(err, ingest.ErrUnknownFormat), ShouldBeTrue)
			})

			Convey("Then missing columns are reported", func() {
				_, err := svc.Ingest(ctx, "data.csv", strings.NewReader("Campaign Name,Lead Email\nx,y\n"), -1)
				So(errors.Is(err, ingest.ErrMissingColumns), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service with a small upload bound", t, func() {
		svc := startedService(service.WithMaxUploadBytes(64))
		defer svc.Stop()
		ctx := context.Background()

		Convey("Then a declared oversize upload is refused before reading", func() {
			_, err := svc.Ingest(ctx, "a.csv", strings.NewReader(smallCSV), int64(len(smallCSV)))
			So(errors.Is(err, ingest.ErrFileTooLarge), ShouldBeTrue)
		})

		Convey("Then an undeclared oversize upload is refused after spooling", func() {
			_, err := svc.Ingest(ctx, "a.csv", strings.NewReader(smallCSV), -1)
			So(errors.Is(err, ingest.ErrFileTooLarge), ShouldBeTrue)
		})
	})
}

func TestService_Dashboard(t *testing.T) {
	Convey("Given an ingested sample dataset", t, func() {
		svc := startedService()
		defer svc.Stop()
		ctx := context.Background()

		up, err := svc.Ingest(ctx, "sample.csv", bytes.NewReader(sampleCSV(400, 42)), -1)
		So(err, ShouldBeNil)
		id := up.Table.Source.ID

		Convey("When the default query is used", func() {
			d, err := svc.Dashboard(ctx, id, svc.DefaultQuery())
			So(err, ShouldBeNil)

			Convey("Then every row is summarized", func() {
				So(d.Rows, ShouldEqual, up.Table.Len())
				So(d.TotalRows, ShouldEqual, up.Table.Len())
				So(d.Summary.Sent, ShouldEqual, up.Table.Len())
				So(d.Summary.ReplyRate, ShouldBeBetweenOrEqual, 0, 100)
				So(d.Top, ShouldEqual, "5")
				So(len(d.Takeaways), ShouldEqual, 4)
			})

			Convey("Then every available breakdown has a section", func() {
				So(len(d.Sections), ShouldEqual, len(aggregate.Dimensions()))
				for _, sec := range d.Sections {
					So(len(sec.Groups), ShouldBeLessThanOrEqualTo, 5)
				}
			})
		})

		Convey("When a dimension selects nothing", func() {
			q := svc.DefaultQuery()
			q.Campaigns = []string{}
			d, err := svc.Dashboard(ctx, id, q)
			So(err, ShouldBeNil)

			Convey("Then the dashboard is empty with a notice", func() {
				So(d.Rows, ShouldEqual, 0)
				So(d.Summary.OpenRate, ShouldEqual, 0)
				So(len(d.Notices), ShouldEqual, 1)
				So(d.Notices[0].Section, ShouldEqual, "filter")
				for _, sec := range d.Sections {
					So(sec.Notice, ShouldNotBeNil)
				}
			})
		})

		Convey("When narrowing to one campaign", func() {
			opts, err := svc.Options(ctx, id)
			So(err, ShouldBeNil)
			q := svc.DefaultQuery()
			q.Campaigns = opts.Campaigns[:1]
			q.Top = aggregate.All

			sec, err := svc.Breakdown(ctx, id, aggregate.OpensByCampaign, q)
			So(err, ShouldBeNil)

			Convey("Then only that campaign appears", func() {
				So(len(sec.Groups), ShouldEqual, 1)
				So(sec.Groups[0].Key, ShouldEqual, opts.Campaigns[0])
				So(sec.Advice, ShouldNotBeEmpty)
			})
		})

		Convey("When asking for other views", func() {
			q := svc.DefaultQuery()

			geo, err := svc.CityGeo(ctx, id, q)
			So(err, ShouldBeNil)
			So(len(geo), ShouldBeLessThanOrEqualTo, 5)

			replies, err := svc.Replies(ctx, id, q)
			So(err, ShouldBeNil)
			So(len(replies), ShouldBeGreaterThan, 0)

			leaders, err := svc.Leaders(ctx, id, q)
			So(err, ShouldBeNil)
			So(len(leaders), ShouldBeLessThanOrEqualTo, 5)

			quarters, err := svc.Compare(ctx, id, []int{1, 3}, q)
			So(err, ShouldBeNil)
			So(len(quarters), ShouldEqual, 2)

			_, err = svc.Compare(ctx, id, []int{2}, q)
			So(errors.Is(err, aggregate.ErrTooFewQuarters), ShouldBeTrue)

			_, err = svc.Breakdown(ctx, id, aggregate.Dimension("nope"), q)
			So(errors.Is(err, aggregate.ErrUnknownDimension), ShouldBeTrue)
		})

		Convey("When the dataset is unknown", func() {
			_, err := svc.Dashboard(ctx, "missing", svc.DefaultQuery())
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Insights(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(service.WithScoreLimit(10))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When a large sample is analysed", func() {
			up, err := svc.Ingest(ctx, "sample.csv", bytes.NewReader(sampleCSV(400, 42)), -1)
			So(err, ShouldBeNil)
			reports, err := svc.Insights(ctx, up.Table.Source.ID, svc.DefaultQuery())
			So(err, ShouldBeNil)

			Convey("Then every provider produces a result", func() {
				So(len(reports), ShouldEqual, 5)
				for _, r := range reports {
					So(r.Error, ShouldBeEmpty)
					So(r.Warning, ShouldBeEmpty)
					So(r.Result, ShouldNotBeNil)
					So(len(r.Result.Scores), ShouldBeLessThanOrEqualTo, 10)
				}
			})
		})

		Convey("When a tiny table is analysed", func() {
			up, err := svc.Ingest(ctx, "small.csv", strings.NewReader(smallCSV), -1)
			So(err, ShouldBeNil)
			id := up.Table.Source.ID

			Convey("Then classifiers warn instead of failing", func() {
				rep, err := svc.Insight(ctx, id, insight.NameBotClassifier, svc.DefaultQuery())
				So(err, ShouldBeNil)
				So(rep.Result, ShouldBeNil)
				So(rep.Warning, ShouldContainSubstring, insight.NameBotClassifier)
			})

			Convey("Then clustering still runs", func() {
				rep, err := svc.Insight(ctx, id, insight.NameBehaviorClusters, svc.DefaultQuery())
				So(err, ShouldBeNil)
				So(rep.Result, ShouldNotBeNil)
				So(rep.ScoredRows, ShouldEqual, 2)
			})

			Convey("Then unknown providers are rejected", func() {
				_, err := svc.Insight(ctx, id, "crystal_ball", svc.DefaultQuery())
				So(errors.Is(err, insight.ErrUnknownProvider), ShouldBeTrue)
			})

			Convey("Then the forecast chart reports insufficient data", func() {
				var buf bytes.Buffer
				err := svc.Chart(ctx, id, insight.NameOpensForecaster, svc.DefaultQuery(), &buf)
				So(errors.Is(err, insight.ErrInsufficientData), ShouldBeTrue)
			})
		})
	})
}

func TestService_Charts(t *testing.T) {
	Convey("Given an ingested sample dataset", t, func() {
		svc := startedService()
		defer svc.Stop()
		ctx := context.Background()
		up, err := svc.Ingest(ctx, "sample.csv", bytes.NewReader(sampleCSV(200, 7)), -1)
		So(err, ShouldBeNil)
		id := up.Table.Source.ID

		Convey("Then every chart renders a PNG", func() {
			for _, name := range service.ChartNames() {
				var buf bytes.Buffer
				So(svc.Chart(ctx, id, name, svc.DefaultQuery(), &buf), ShouldBeNil)
				So(bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), ShouldBeTrue)
			}
		})

		Convey("Then unknown charts are rejected", func() {
			err := svc.Chart(ctx, id, "sparkline", svc.DefaultQuery(), &bytes.Buffer{})
			So(errors.Is(err, service.ErrUnknownChart), ShouldBeTrue)
		})
	})
}

func TestService_Sessions(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(service.WithSessionStore(session.NewMemoryStore(time.Hour)))
		defer svc.Stop()
		ctx := context.Background()

		sess, err := svc.NewSession(ctx)
		So(err, ShouldBeNil)

		Convey("Then new sessions use abbreviated numbers", func() {
			So(svc.FullNumbers(ctx, sess.ID), ShouldBeFalse)
			So(svc.GetStats()["sessions"], ShouldEqual, 1)
		})

		Convey("When the display is toggled", func() {
			toggled, err := svc.ToggleDisplay(ctx, sess.ID)
			So(err, ShouldBeNil)

			Convey("Then the preference persists for that session only", func() {
				So(toggled.FullNumbers, ShouldBeTrue)
				So(svc.FullNumbers(ctx, sess.ID), ShouldBeTrue)

				other, err := svc.NewSession(ctx)
				So(err, ShouldBeNil)
				So(svc.FullNumbers(ctx, other.ID), ShouldBeFalse)
			})
		})

		Convey("When the display is toggled concurrently an even number of times", func() {
			const toggles = 40
			var wg sync.WaitGroup
			var failures atomic.Int32
			for i := 0; i < toggles; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := svc.ToggleDisplay(ctx, sess.ID); err != nil {
						failures.Add(1)
					}
				}()
			}
			wg.Wait()

			Convey("Then no toggle should be lost", func() {
				So(failures.Load(), ShouldEqual, 0)
				So(svc.FullNumbers(ctx, sess.ID), ShouldBeFalse)
			})

			Convey("Then one more toggle should switch to full numbers", func() {
				toggled, err := svc.ToggleDisplay(ctx, sess.ID)
				So(err, ShouldBeNil)
				So(toggled.FullNumbers, ShouldBeTrue)
			})
		})

		Convey("Then a dataset can be attached", func() {
			So(svc.AttachDataset(ctx, sess.ID, "abc"), ShouldBeNil)
			got, err := svc.Session(ctx, sess.ID)
			So(err, ShouldBeNil)
			So(got.DatasetID, ShouldEqual, "abc")
		})

		Convey("Then unknown sessions fall back to abbreviated numbers", func() {
			So(svc.FullNumbers(ctx, ""), ShouldBeFalse)
			So(svc.FullNumbers(ctx, "missing"), ShouldBeFalse)
			_, err := svc.ToggleDisplay(ctx, "missing")
			So(errors.Is(err, session.ErrNotFound), ShouldBeTrue)
		})
	})
}
