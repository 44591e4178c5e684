package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/QueCS/ogame-highscores-tracker/internal/adapters/fetch"
	"github.com/QueCS/ogame-highscores-tracker/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

const samplePayload = `{"@attributes":{"timestamp":1700000000},"player":[{"@attributes":{"id":"7","position":"3","score":"5000000"}}]}`

func TestHighscoresFetch(t *testing.T) {
	Convey("Given an API answering with a valid payload", t, func() {
		var gotPath atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath.Store(r.URL.String())
			_, _ = w.Write([]byte(samplePayload))
		}))
		defer srv.Close()

		client := fetch.NewClient(fetch.WithBaseURL(srv.URL))

		Convey("When fetching a combination", func() {
			body, err := client.Highscores(context.Background(), "123", 1, 1)

			Convey("Then the raw payload should come back", func() {
				So(err, ShouldBeNil)
				So(string(body), ShouldEqual, samplePayload)
			})

			Convey("And the request URL should be built from the combination", func() {
				So(gotPath.Load(), ShouldEqual, "/api/highscore.xml?toJson=1&category=1&type=1")
			})
		})

		Convey("When fetching entity metadata", func() {
			_, err := client.Players(context.Background(), "123")
			So(err, ShouldBeNil)
			So(gotPath.Load(), ShouldEqual, "/api/players.xml?toJson=1")

			_, err = client.Alliances(context.Background(), "123")
			So(err, ShouldBeNil)
			So(gotPath.Load(), ShouldEqual, "/api/alliances.xml?toJson=1")
		})
	})
}

func TestFetchFailures(t *testing.T) {
	Convey("Given failing upstreams", t, func() {
		Convey("When the API answers with a non-200 status", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusServiceUnavailable)
			}))
			defer srv.Close()

			client := fetch.NewClient(fetch.WithBaseURL(srv.URL))
			_, err := client.Highscores(context.Background(), "123", 1, 0)

			Convey("Then a StatusError should surface", func() {
				var statusErr *fetch.StatusError
				So(errors.As(err, &statusErr), ShouldBeTrue)
				So(statusErr.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(fetch.Reason(err), ShouldEqual, "http_status:503")
			})
		})

		Convey("When the API answers with a non-JSON body", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<highscore></highscore>"))
			}))
			defer srv.Close()

			client := fetch.NewClient(fetch.WithBaseURL(srv.URL))
			_, err := client.Highscores(context.Background(), "123", 1, 0)

			Convey("Then a DecodeError should surface", func() {
				var decodeErr *fetch.DecodeError
				So(errors.As(err, &decodeErr), ShouldBeTrue)
				So(fetch.Reason(err), ShouldEqual, "decode")
			})
		})

		Convey("When the API is unreachable", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			srv.Close() // connection refused from here on

			client := fetch.NewClient(fetch.WithBaseURL(srv.URL))
			_, err := client.Highscores(context.Background(), "123", 1, 0)

			Convey("Then a TransportError should surface", func() {
				var transportErr *fetch.TransportError
				So(errors.As(err, &transportErr), ShouldBeTrue)
				So(fetch.Reason(err), ShouldEqual, "transport")
			})
		})
	})
}

func TestRetryUntilSuccessPolicy(t *testing.T) {
	Convey("Given an API that fails twice before answering", t, func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) <= 2 {
				http.Error(w, "warming up", http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(samplePayload))
		}))
		defer srv.Close()

		Convey("When fetching under retry_until_success", func() {
			client := fetch.NewClient(
				fetch.WithBaseURL(srv.URL),
				fetch.WithPolicy(fetch.PolicyRetryUntilSuccess),
				fetch.WithRetryInterval(10*time.Millisecond),
			)
			body, err := client.Highscores(context.Background(), "123", 1, 0)

			Convey("Then the fetch should eventually succeed", func() {
				So(err, ShouldBeNil)
				So(string(body), ShouldEqual, samplePayload)
				So(calls.Load(), ShouldEqual, 3)
			})
		})

		Convey("When the context is canceled mid-retry", func() {
			calls.Store(-1000) // keep failing for the whole test
			client := fetch.NewClient(
				fetch.WithBaseURL(srv.URL),
				fetch.WithPolicy(fetch.PolicyRetryUntilSuccess),
				fetch.WithRetryInterval(50*time.Millisecond),
			)
			ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
			defer cancel()

			start := time.Now()
			_, err := client.Highscores(ctx, "123", 1, 0)

			Convey("Then the retry loop should stop with an error", func() {
				So(err, ShouldNotBeNil)
				So(time.Since(start), ShouldBeLessThan, 2*time.Second)
			})
		})
	})
}

func TestParsePolicy(t *testing.T) {
	Convey("Given configured policy strings", t, func() {
		p, err := fetch.ParsePolicy("single_attempt")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, fetch.PolicySingleAttempt)

		p, err = fetch.ParsePolicy("retry_until_success")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, fetch.PolicyRetryUntilSuccess)

		Convey("And the empty string defaults to a single attempt", func() {
			p, err = fetch.ParsePolicy("")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, fetch.PolicySingleAttempt)
		})

		Convey("And unknown strings are rejected", func() {
			_, err = fetch.ParsePolicy("never_retry_ever")
			So(err, ShouldNotBeNil)
		})
	})
}
