package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/lineup/internal/adapters/http/api"
	service "github.com/okian/lineup/internal/app"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/engine"
	"github.com/okian/lineup/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const testMaxLimit = 10

// newMux starts an in-memory service with 2v2 teams and registers the API.
func newMux(opts ...engine.Option) (*http.ServeMux, *service.Service) {
	opts = append([]engine.Option{engine.WithSizeRange(2, 2)}, opts...)
	svc := service.New(service.WithEngine(engine.New(opts...)))
	So(svc.Start(context.Background()), ShouldBeNil)

	mux := http.NewServeMux()
	api.NewServer(svc, svc, testMaxLimit).Register(context.Background(), mux)
	return mux, svc
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.NewDecoder(w.Body).Decode(&v), ShouldBeNil)
	return v
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func addFourPlayers(mux *http.ServeMux) {
	for _, body := range []string{
		`{"name":"ann","rating":1200}`,
		`{"name":"ben","rating":1000}`,
		`{"name":"cat","rating":900}`,
		`{"name":"dan","rating":1100}`,
	} {
		So(do(mux, http.MethodPost, "/players", body).Code, ShouldEqual, http.StatusCreated)
	}
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux, svc := newMux()
		defer svc.Stop()

		Convey("Then the health endpoint should serve metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint should describe the service", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
			stats := decode[map[string]any](w)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("Then unknown paths should be not found", func() {
			So(do(mux, http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then unsupported methods should be rejected", func() {
			So(do(mux, http.MethodPatch, "/players", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestPlayersHandler(t *testing.T) {
	Convey("Given an empty roster", t, func() {
		mux, svc := newMux()
		defer svc.Stop()

		Convey("When a player is posted", func() {
			w := do(mux, http.MethodPost, "/players", `{"name":"ann","rating":1200}`)

			Convey("Then it should be created", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				p := decode[model.Participant](w)
				So(p, ShouldResemble, model.Participant{ID: 1, Name: "ann", Rating: 1200})
			})

			Convey("Then it should be listed", func() {
				w := do(mux, http.MethodGet, "/players", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				players := decode[[]model.Participant](w)
				So(len(players), ShouldEqual, 1)
			})

			Convey("Then posting the same name should conflict", func() {
				w := do(mux, http.MethodPost, "/players", `{"name":"ann"}`)
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decode[apiError](w).Code, ShouldEqual, "conflict")
			})

			Convey("Then its rating should be updatable", func() {
				w := do(mux, http.MethodPut, "/players/ann", `{"rating":1300}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[model.Participant](w).Rating, ShouldEqual, 1300)
			})

			Convey("Then it should be removable once", func() {
				So(do(mux, http.MethodDelete, "/players/ann", "").Code, ShouldEqual, http.StatusNoContent)
				So(do(mux, http.MethodDelete, "/players/ann", "").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a player is posted without a rating", func() {
			w := do(mux, http.MethodPost, "/players", `{"name":"bob"}`)

			Convey("Then the default rating should be used", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(decode[model.Participant](w).Rating, ShouldEqual, model.DefaultRating)
			})
		})

		Convey("When the request body is invalid", func() {
			missing := do(mux, http.MethodPost, "/players", `{}`)
			unknown := do(mux, http.MethodPost, "/players", `{"nick":"x"}`)
			broken := do(mux, http.MethodPost, "/players", `{"name":`)
			noRating := do(mux, http.MethodPut, "/players/ann", `{}`)

			Convey("Then it should be rejected as a bad request", func() {
				So(missing.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[apiError](missing).Message, ShouldContainSubstring, "name is required")
				So(unknown.Code, ShouldEqual, http.StatusBadRequest)
				So(broken.Code, ShouldEqual, http.StatusBadRequest)
				So(noRating.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[apiError](noRating).Message, ShouldContainSubstring, "rating is required")
			})
		})

		Convey("When an unknown player is updated", func() {
			w := do(mux, http.MethodPut, "/players/zed", `{"rating":1}`)

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode[apiError](w).Code, ShouldEqual, "not_found")
			})
		})
	})
}

func TestSynergyHandler(t *testing.T) {
	Convey("Given four players", t, func() {
		mux, svc := newMux()
		defer svc.Stop()
		addFourPlayers(mux)

		Convey("When synergy is set", func() {
			w := do(mux, http.MethodPut, "/synergy", `{"a":"cat","b":"ann","value":300}`)

			Convey("Then the canonical entry should be returned and listed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[service.SynergyEntry](w), ShouldResemble, service.SynergyEntry{A: "cat", B: "ann", Value: 300})

				list := do(mux, http.MethodGet, "/synergy", "")
				So(list.Code, ShouldEqual, http.StatusOK)
				So(decode[[]service.SynergyEntry](list), ShouldResemble, []service.SynergyEntry{{A: "ann", B: "cat", Value: 300}})
			})
		})

		Convey("When a player is paired with itself", func() {
			w := do(mux, http.MethodPut, "/synergy", `{"a":"ann","b":"ann","value":5}`)

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[apiError](w).Message, ShouldContainSubstring, "b must differ from a")
			})
		})

		Convey("When the value is missing", func() {
			w := do(mux, http.MethodPut, "/synergy", `{"a":"ann","b":"ben"}`)

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When a player is unknown", func() {
			w := do(mux, http.MethodPut, "/synergy", `{"a":"ann","b":"zed","value":5}`)

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestLineupsHandler(t *testing.T) {
	Convey("Given four players", t, func() {
		mux, svc := newMux()
		defer svc.Stop()
		addFourPlayers(mux)

		Convey("When lineups are generated", func() {
			w := do(mux, http.MethodPost, "/lineups", "")
			So(w.Code, ShouldEqual, http.StatusCreated)
			run := decode[service.RunView](w)

			Convey("Then ranked lineups should be returned", func() {
				So(run.ID, ShouldNotBeEmpty)
				So(run.Total, ShouldEqual, 3)
				So(len(run.Lineups), ShouldEqual, 3)
				So(run.Lineups[0].Rank, ShouldEqual, 1)
				So(run.Lineups[0].Fitness, ShouldEqual, 0)
				So(run.Lineups[2].Distance, ShouldEqual, 2)
			})

			Convey("Then generating again should return the cached run", func() {
				again := do(mux, http.MethodPost, "/lineups?limit=1", "")
				So(again.Code, ShouldEqual, http.StatusOK)
				cached := decode[service.RunView](again)
				So(cached.ID, ShouldEqual, run.ID)
				So(cached.Cached, ShouldBeTrue)
				So(len(cached.Lineups), ShouldEqual, 1)
			})

			Convey("Then the run should be listed and retrievable", func() {
				list := do(mux, http.MethodGet, "/lineups", "")
				So(list.Code, ShouldEqual, http.StatusOK)
				So(len(decode[[]service.Run](list)), ShouldEqual, 1)

				got := do(mux, http.MethodGet, "/lineups/"+run.ID+"?limit=2", "")
				So(got.Code, ShouldEqual, http.StatusOK)
				So(len(decode[service.RunView](got).Lineups), ShouldEqual, 2)
			})

			Convey("Then two lineups should be comparable", func() {
				cmp := do(mux, http.MethodGet, "/lineups/"+run.ID+"/compare?ref=1&candidate=3", "")
				So(cmp.Code, ShouldEqual, http.StatusOK)
				So(decode[service.Comparison](cmp).Distance, ShouldEqual, 2)
			})

			Convey("Then invalid comparisons should be rejected", func() {
				So(do(mux, http.MethodGet, "/lineups/"+run.ID+"/compare?ref=1&candidate=9", "").Code, ShouldEqual, http.StatusBadRequest)
				So(do(mux, http.MethodGet, "/lineups/"+run.ID+"/compare?ref=x&candidate=1", "").Code, ShouldEqual, http.StatusBadRequest)
				So(do(mux, http.MethodGet, "/lineups/"+run.ID+"/compare?ref=1", "").Code, ShouldEqual, http.StatusBadRequest)
				So(do(mux, http.MethodGet, "/lineups/missing/compare?ref=1&candidate=1", "").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the limit is invalid", func() {
			zero := do(mux, http.MethodPost, "/lineups?limit=0", "")
			high := do(mux, http.MethodPost, "/lineups?limit=11", "")
			text := do(mux, http.MethodPost, "/lineups?limit=all", "")

			Convey("Then it should be a bad request", func() {
				So(zero.Code, ShouldEqual, http.StatusBadRequest)
				So(high.Code, ShouldEqual, http.StatusBadRequest)
				So(text.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When an unknown run is requested", func() {
			w := do(mux, http.MethodGet, "/lineups/missing", "")

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given an engine with a tiny partition limit", t, func() {
		mux, svc := newMux(engine.WithMaxPartitions(1))
		defer svc.Stop()
		addFourPlayers(mux)

		w := do(mux, http.MethodPost, "/lineups", "")

		Convey("Then generation should be unprocessable", func() {
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decode[apiError](w).Code, ShouldEqual, "too_many_partitions")
		})
	})

	Convey("Given a stopped service", t, func() {
		mux, svc := newMux()
		svc.Stop()

		w := do(mux, http.MethodGet, "/players", "")

		Convey("Then requests should be unavailable", func() {
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}
