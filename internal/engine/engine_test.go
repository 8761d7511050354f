package engine_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/okian/lineup/internal/domain/enumerate"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/engine"
	. "github.com/smartystreets/goconvey/convey"
)

func roster(ratings ...int) []model.Participant {
	out := make([]model.Participant, len(ratings))
	for i, r := range ratings {
		out[i] = model.Participant{ID: i + 1, Name: string(rune('a' + i)), Rating: r}
	}
	return out
}

func randomRoster(seed int64, n int) []model.Participant {
	rng := rand.New(rand.NewSource(seed))
	ratings := make([]int, n)
	for i := range ratings {
		// Narrow range so equal fitness values occur and tie order matters.
		ratings[i] = 900 + 50*rng.Intn(5)
	}
	return roster(ratings...)
}

func ids(p model.Partition) [][]int {
	return p.MemberIDs()
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	Convey("Given four players and 2v2 teams", t, func() {
		players := roster(1200, 1000, 900, 1100)
		e := engine.New(engine.WithSizeRange(2, 2))

		Convey("When lineups are generated", func() {
			res, err := e.Generate(ctx, players, nil)

			Convey("Then every distinct split should be ranked by fitness", func() {
				So(err, ShouldBeNil)
				So(res.Enumerated, ShouldEqual, 3)
				So(len(res.Plans), ShouldEqual, 1)
				So(res.Plans[0].String(), ShouldEqual, "2v2")
				So(len(res.Lineups), ShouldEqual, 3)

				So(res.Lineups[0].Fitness, ShouldEqual, 0)
				So(ids(res.Lineups[0]), ShouldResemble, [][]int{{1, 3}, {2, 4}})
				So(res.Lineups[1].Fitness, ShouldEqual, 200)
				So(ids(res.Lineups[1]), ShouldResemble, [][]int{{1, 2}, {3, 4}})
				So(res.Lineups[2].Fitness, ShouldEqual, 400)
				So(ids(res.Lineups[2]), ShouldResemble, [][]int{{1, 4}, {2, 3}})
			})

			Convey("Then teams should carry numbers and effective ratings", func() {
				best := res.Lineups[0]
				So(best.Teams[0].Number, ShouldEqual, 1)
				So(best.Teams[1].Number, ShouldEqual, 2)
				So(best.Teams[0].Rating, ShouldEqual, 2100)
				So(best.Teams[1].Rating, ShouldEqual, 2100)
			})
		})

		Convey("When synergy favours one pair", func() {
			table := model.SynergyTable{model.NewPairKey(1, 3): 300}
			res, err := e.Generate(ctx, players, table)

			Convey("Then the ranking should reflect the bonus", func() {
				So(err, ShouldBeNil)
				So(res.Lineups[0].Fitness, ShouldEqual, 200)
				So(ids(res.Lineups[0]), ShouldResemble, [][]int{{1, 2}, {3, 4}})
				So(res.Lineups[1].Fitness, ShouldEqual, 300)
			})
		})
	})

	Convey("Given four equally rated players and 2v2 teams", t, func() {
		res, err := engine.New(engine.WithSizeRange(2, 2)).Generate(ctx, roster(1000, 1000, 1000, 1000), nil)

		Convey("Then exactly three splits should tie at fitness zero", func() {
			So(err, ShouldBeNil)
			So(len(res.Plans), ShouldEqual, 1)
			So(res.Plans[0].Flatten(), ShouldResemble, []int{2, 2})
			So(res.Enumerated, ShouldEqual, 3)
			So(len(res.Lineups), ShouldEqual, 3)
			for _, l := range res.Lineups {
				So(l.Fitness, ShouldEqual, 0)
			}
			// Ties keep enumeration order.
			So(ids(res.Lineups[0]), ShouldResemble, [][]int{{1, 2}, {3, 4}})
			So(ids(res.Lineups[1]), ShouldResemble, [][]int{{1, 3}, {2, 4}})
			So(ids(res.Lineups[2]), ShouldResemble, [][]int{{1, 4}, {2, 3}})
		})
	})

	Convey("Given a roster with no valid team size", t, func() {
		e := engine.New()
		res, err := e.Generate(ctx, roster(1000, 1000, 1000, 1000, 1000, 1000, 1000), nil)

		Convey("Then the result should be empty without an error", func() {
			So(err, ShouldBeNil)
			So(res.Plans, ShouldBeEmpty)
			So(res.Lineups, ShouldBeEmpty)
			So(res.Enumerated, ShouldEqual, 0)
		})
	})

	Convey("Given eight players and sizes one to four", t, func() {
		players := randomRoster(11, 8)

		Convey("When the team mode is used", func() {
			res, err := engine.New(engine.WithSizeRange(1, 4)).Generate(ctx, players, nil)

			Convey("Then all three plans should be enumerated", func() {
				So(err, ShouldBeNil)
				So(len(res.Plans), ShouldEqual, 3)
				// 1 + 105 + 35 canonical splits.
				So(res.Enumerated, ShouldEqual, 141)
				So(len(res.Lineups), ShouldEqual, 141)
				for i := 1; i < len(res.Lineups); i++ {
					So(res.Lineups[i-1].Fitness, ShouldBeLessThanOrEqualTo, res.Lineups[i].Fitness)
				}
			})
		})

		Convey("When the match mode is used", func() {
			res, err := engine.New(engine.WithSizeRange(2, 2), engine.WithMode(enumerate.ByMatch)).Generate(ctx, players, nil)

			Convey("Then every distinct match-up should be enumerated", func() {
				So(err, ShouldBeNil)
				So(res.Enumerated, ShouldEqual, 315)
				So(len(res.Lineups), ShouldEqual, 315)
			})
		})
	})

	Convey("Given a partition limit", t, func() {
		e := engine.New(engine.WithSizeRange(2, 2), engine.WithMaxPartitions(10))
		_, err := e.Generate(ctx, randomRoster(1, 8), nil)

		Convey("Then an oversized run should be refused", func() {
			So(errors.Is(err, engine.ErrTooManyPartitions), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		Convey("When running sequentially", func() {
			_, err := engine.New(engine.WithSizeRange(2, 2)).Generate(cctx, randomRoster(2, 8), nil)

			Convey("Then the cancellation should be reported", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When running in parallel", func() {
			_, err := engine.New(engine.WithSizeRange(2, 2), engine.WithWorkers(4)).Generate(cctx, randomRoster(2, 8), nil)

			Convey("Then the cancellation should be reported", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestGenerateParallel(t *testing.T) {
	ctx := context.Background()

	Convey("Given twelve players with tied ratings", t, func() {
		players := randomRoster(7, 12)
		table := model.SynergyTable{
			model.NewPairKey(1, 2):  50,
			model.NewPairKey(3, 9):  -25,
			model.NewPairKey(4, 12): 100,
		}

		for _, mode := range []enumerate.Mode{enumerate.ByTeam, enumerate.ByMatch} {
			Convey("In "+mode.String()+" mode", func() {
				opts := []engine.Option{engine.WithSizeRange(3, 6), engine.WithMode(mode)}
				seq, err := engine.New(opts...).Generate(ctx, players, table)
				So(err, ShouldBeNil)

				Convey("Then a parallel run should match the sequential ranking exactly", func() {
					par, err := engine.New(append(opts, engine.WithWorkers(4))...).Generate(ctx, players, table)
					So(err, ShouldBeNil)
					So(par.Enumerated, ShouldEqual, seq.Enumerated)
					So(par.Lineups, ShouldResemble, seq.Lineups)
				})

				Convey("Then top-K should equal the prefix of the full ranking", func() {
					for _, workers := range []int{1, 3} {
						top, err := engine.New(append(opts, engine.WithTopK(10), engine.WithWorkers(workers))...).Generate(ctx, players, table)
						So(err, ShouldBeNil)
						So(top.Enumerated, ShouldEqual, seq.Enumerated)
						So(top.Lineups, ShouldResemble, seq.Lineups[:10])
					}
				})
			})
		}
	})
}

func TestEstimate(t *testing.T) {
	Convey("Given the default size range", t, func() {
		e := engine.New()

		Convey("Then twenty players should give both plans combined", func() {
			// 5v5+5v5 gives 488,864,376 and 10v10 gives 92,378.
			So(e.Estimate(20), ShouldEqual, uint64(488_956_754))
		})

		Convey("Then a roster without plans should estimate zero", func() {
			So(e.Estimate(7), ShouldEqual, 0)
		})
	})
}

func TestCompare(t *testing.T) {
	Convey("Given generated lineups", t, func() {
		e := engine.New(engine.WithSizeRange(2, 2))
		res, err := e.Generate(context.Background(), roster(1200, 1000, 900, 1100), nil)
		So(err, ShouldBeNil)

		Convey("Then a lineup should have distance zero to itself", func() {
			So(e.Compare(res.Lineups[1], res.Lineups[1]), ShouldEqual, 0)
		})

		Convey("Then distances to the best lineup should be listed", func() {
			d := e.Distances(res.Lineups)
			So(len(d), ShouldEqual, 3)
			So(d[0], ShouldEqual, 0)
			// One swap between the two teams moves one member per team.
			So(d[1], ShouldEqual, 2)
			So(d[2], ShouldEqual, 2)
			So(e.Compare(res.Lineups[0], res.Lineups[2]), ShouldEqual, d[2])
		})

		Convey("Then an empty list should give no distances", func() {
			So(e.Distances(nil), ShouldBeEmpty)
		})
	})
}

func TestSettings(t *testing.T) {
	Convey("Given engines with different options", t, func() {
		a := engine.New(engine.WithSizeRange(2, 4), engine.WithWorkers(4))
		b := engine.New(engine.WithSizeRange(2, 4), engine.WithBruteForceLimit(3))
		c := engine.New(engine.WithSizeRange(2, 4), engine.WithMode(enumerate.ByMatch))

		Convey("Then only output-relevant options should change the settings", func() {
			So(a.Settings(), ShouldEqual, "sizes=2..4 mode=team top_k=0")
			So(a.Settings(), ShouldEqual, b.Settings())
			So(c.Settings(), ShouldNotEqual, a.Settings())
			So(a.Workers(), ShouldEqual, 4)
		})
	})
}
