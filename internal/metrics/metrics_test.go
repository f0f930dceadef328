package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"

	"pos_ledger/internal/sales"
)

func TestManager(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(
			WithNamespace("test"),
			WithSubsystem("pos"),
			WithHistogramBuckets([]float64{1, 10, 100}),
			WithPrometheusRegistry(registry),
		)

		Convey("It uses the given registry", func() {
			So(m.Registry(), ShouldEqual, registry)
		})

		Convey("When sales are recorded and rejected", func() {
			m.SaleRecorded(3, 1500)
			m.SaleRecorded(1, 300)
			m.SaleRejected("lookup")
			m.SaleRejected("lookup")
			m.SaleRejected("validation")

			Convey("Then counters reflect them", func() {
				So(testutil.ToFloat64(m.salesRecorded), ShouldEqual, 2)
				So(testutil.ToFloat64(m.rowsAppended), ShouldEqual, 4)
				So(testutil.ToFloat64(m.salesAmount), ShouldEqual, 1800)
				So(testutil.ToFloat64(m.salesRejected.WithLabelValues("lookup")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.salesRejected.WithLabelValues("validation")), ShouldEqual, 1)
			})
		})

		Convey("When a discount sale has a negative total", func() {
			m.SaleRecorded(2, 1000)
			So(func() { m.SaleRecorded(1, -100) }, ShouldNotPanic)

			Convey("Then the amount is netted", func() {
				So(testutil.ToFloat64(m.salesRecorded), ShouldEqual, 2)
				So(testutil.ToFloat64(m.salesAmount), ShouldEqual, 900)
			})
		})

		Convey("When HTTP requests are recorded", func() {
			m.RecordHTTPRequest("/sales", "POST", 201, 12*time.Millisecond)

			Convey("Then the handler exposes them", func() {
				rec := httptest.NewRecorder()
				m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `test_pos_http_requests_total{endpoint="/sales",method="POST",status_code="201"} 1`)
			})
		})
	})
}

type brokenStore struct{ *sales.LocalStorage }

func (brokenStore) CreateSheet(context.Context, string, string) error { return errors.New("down") }

func TestInstrumentedStore(t *testing.T) {
	Convey("Given an instrumented store", t, func() {
		m := NewManager()
		st := InstrumentStore(brokenStore{sales.NewLocalStorage()}, m)
		ctx := context.Background()

		Convey("When calls succeed and fail", func() {
			_, err := st.ListSheetTitles(ctx, "ledger")
			So(err, ShouldBeNil)
			So(st.CreateSheet(ctx, "ledger", "Fair"), ShouldNotBeNil)
			_, err = st.GetValues(ctx, "ledger", "Fair!A1")
			So(err, ShouldNotBeNil)

			Convey("Then outcomes are counted per operation", func() {
				So(testutil.ToFloat64(m.storeCalls.WithLabelValues("list_sheet_titles", "ok")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.storeCalls.WithLabelValues("create_sheet", "error")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.storeCalls.WithLabelValues("get_values", "error")), ShouldEqual, 1)
			})
		})
	})
}
