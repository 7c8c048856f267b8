package sampledata

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/mailboard/internal/domain/ingest"
	"github.com/okian/mailboard/internal/domain/model"
	"github.com/okian/mailboard/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		rows := NewGenerator(42).Rows(300)

		Convey("Then output is deterministic for the seed", func() {
			So(NewGenerator(42).Rows(300), ShouldResemble, rows)
			So(NewGenerator(7).Rows(300), ShouldNotResemble, rows)
		})

		Convey("Then every row matches the header", func() {
			for _, r := range rows {
				So(len(r), ShouldEqual, len(Header))
			}
		})

		Convey("Then the CSV loads with both bot states and opened rows", func() {
			var buf bytes.Buffer
			So(WriteCSV(&buf, rows), ShouldBeNil)

			table, err := ingest.Load(context.Background(), &buf, model.FormatCSV)
			So(err, ShouldBeNil)
			So(table.Len()+table.Source.BouncedRows, ShouldEqual, 300)
			So(table.Capabilities.HasGeo, ShouldBeTrue)
			So(table.Capabilities.HasReply, ShouldBeTrue)

			var bots, opened int
			for _, r := range table.Rows {
				if r.BotCheck == model.BotStateBot {
					bots++
				}
				if r.Opened() {
					opened++
				}
			}
			So(bots, ShouldBeGreaterThan, 0)
			So(bots, ShouldBeLessThan, table.Len())
			So(opened, ShouldBeGreaterThan, 0)
			So(opened, ShouldBeLessThan, table.Len())
		})

		Convey("Then the XLSX loads to the same table as the CSV", func() {
			var csvBuf, xlsxBuf bytes.Buffer
			So(WriteCSV(&csvBuf, rows), ShouldBeNil)
			So(WriteXLSX(&xlsxBuf, rows), ShouldBeNil)

			fromCSV, err := ingest.Load(context.Background(), &csvBuf, model.FormatCSV)
			So(err, ShouldBeNil)
			fromXLSX, err := ingest.Load(context.Background(), &xlsxBuf, model.FormatXLSX)
			So(err, ShouldBeNil)
			So(fromXLSX.Len(), ShouldEqual, fromCSV.Len())
			So(fromXLSX.Rows[0].CampaignName, ShouldEqual, fromCSV.Rows[0].CampaignName)
			So(fromXLSX.Rows[0].SentAt.Equal(fromCSV.Rows[0].SentAt), ShouldBeTrue)
		})

		Convey("Then an unknown format is rejected", func() {
			So(Write(&bytes.Buffer{}, model.Format("json"), rows), ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a fake dashboard server", t, func() {
		var uploaded string
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		mux.HandleFunc("/datasets", func(w http.ResponseWriter, r *http.Request) {
			f, hdr, err := r.FormFile("file")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			defer f.Close()
			uploaded = hdr.Filename
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(UploadResponse{ID: "abc", Rows: 10})
		})
		mux.HandleFunc("/datasets/abc/summary", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(SummaryResponse{
				Rows:      10,
				Display:   map[string]string{"campaigns": "3"},
				Takeaways: []string{"Campaign reach: 3 campaigns."},
			})
		})
		srv := httptest.NewServer(mux)
		Reset(srv.Close)

		cfg := &Config{BaseURL: srv.URL, Rows: 10, Seed: 1, Format: model.FormatCSV, Timeout: 5 * time.Second}

		Convey("When the run completes", func() {
			err := Run(context.Background(), cfg)

			Convey("Then the file is uploaded under a seeded name", func() {
				So(err, ShouldBeNil)
				So(uploaded, ShouldEqual, "sample_1.csv")
			})
		})

		Convey("When the service is down", func() {
			srv.Close()
			err := Run(context.Background(), cfg)

			Convey("Then the health check fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
