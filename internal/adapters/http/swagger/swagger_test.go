package swagger_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/QueCS/ogame-highscores-tracker/internal/adapters/http/swagger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegister(t *testing.T) {
	Convey("Given the docs routes", t, func() {
		mux := http.NewServeMux()
		swagger.Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When fetching the docs page", func() {
			resp, err := http.Get(srv.URL + "/api-docs")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			body, _ := io.ReadAll(resp.Body)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(resp.Header.Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(string(body), ShouldContainSubstring, "Redoc.init")
		})

		Convey("When fetching the OpenAPI spec", func() {
			resp, err := http.Get(srv.URL + "/openapi.yaml")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			body, _ := io.ReadAll(resp.Body)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, "openapi: 3.0.3")
			So(string(body), ShouldContainSubstring, "/history")
		})
	})

	Convey("Register should refuse a nil mux", t, func() {
		So(func() { swagger.Register(context.Background(), nil) }, ShouldPanic)
	})
}
