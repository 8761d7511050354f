package enumerate_test

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/okian/lineup/internal/domain/enumerate"
	. "github.com/smartystreets/goconvey/convey"
)

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func collect(t *testing.T, idx, sizes []int, mode enumerate.Mode) []enumerate.Assignment {
	t.Helper()
	var out []enumerate.Assignment
	err := enumerate.Walk(idx, sizes, mode, func(a enumerate.Assignment) bool {
		out = append(out, a)
		return true
	})
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	return out
}

// setKey renders an assignment as an unordered set of teams.
func setKey(a enumerate.Assignment) string {
	teams := make([]string, len(a))
	for i, t := range a {
		teams[i] = fmt.Sprint(t)
	}
	sort.Strings(teams)
	return strings.Join(teams, "|")
}

// matchKey renders an assignment as an unordered set of unordered matches.
func matchKey(a enumerate.Assignment) string {
	matches := make([]string, 0, len(a)/2)
	for i := 0; i+1 < len(a); i += 2 {
		pair := []string{fmt.Sprint(a[i]), fmt.Sprint(a[i+1])}
		sort.Strings(pair)
		matches = append(matches, pair[0]+"v"+pair[1])
	}
	sort.Strings(matches)
	return strings.Join(matches, "+")
}

func TestWalk_Completeness(t *testing.T) {
	Convey("Given four participants and sizes [2,2]", t, func() {
		got := collect(t, indices(4), []int{2, 2}, enumerate.ByTeam)

		Convey("Then exactly three partitions should be produced", func() {
			So(len(got), ShouldEqual, 3)
			So(got[0], ShouldResemble, enumerate.Assignment{{0, 1}, {2, 3}})
			So(got[1], ShouldResemble, enumerate.Assignment{{0, 2}, {1, 3}})
			So(got[2], ShouldResemble, enumerate.Assignment{{0, 3}, {1, 2}})
		})
	})

	Convey("Given eight participants and sizes [2,2,2,2]", t, func() {
		sizes := []int{2, 2, 2, 2}

		Convey("When enumerating by team", func() {
			got := collect(t, indices(8), sizes, enumerate.ByTeam)

			Convey("Then 8!/(2!^4 * 4!) = 105 distinct set partitions should be produced", func() {
				So(len(got), ShouldEqual, 105)
				seen := map[string]bool{}
				for _, a := range got {
					seen[setKey(a)] = true
				}
				So(len(seen), ShouldEqual, 105)
			})
		})

		Convey("When enumerating by match", func() {
			got := collect(t, indices(8), sizes, enumerate.ByMatch)

			Convey("Then every distinct match-up should be produced once", func() {
				So(len(got), ShouldEqual, 315)
				seen := map[string]bool{}
				for _, a := range got {
					seen[matchKey(a)] = true
				}
				So(len(seen), ShouldEqual, 315)
			})
		})
	})

	Convey("Given six participants and sizes [3,3]", t, func() {
		got := collect(t, indices(6), []int{3, 3}, enumerate.ByTeam)

		Convey("Then 6!/(3!3!2!) = 10 partitions should be produced", func() {
			So(len(got), ShouldEqual, 10)
		})
	})

	Convey("Given mixed team sizes [1,2]", t, func() {
		got := collect(t, indices(3), []int{1, 2}, enumerate.ByTeam)

		Convey("Then no anchoring should apply and every split should appear", func() {
			So(len(got), ShouldEqual, 3)
		})
	})
}

func TestWalk_Validity(t *testing.T) {
	Convey("Given a roster of arbitrary, unsorted indices", t, func() {
		idx := []int{42, 7, 19, 3, 88, 11}
		got := collect(t, idx, []int{3, 3}, enumerate.ByTeam)

		Convey("Then every partition should cover the roster exactly once", func() {
			want := slices.Clone(idx)
			slices.Sort(want)
			for _, a := range got {
				var all []int
				for _, team := range a {
					So(len(team), ShouldEqual, 3)
					So(slices.IsSorted(team), ShouldBeTrue)
					all = append(all, team...)
				}
				slices.Sort(all)
				So(all, ShouldResemble, want)
			}
		})

		Convey("Then the smallest index should always be in the first team", func() {
			for _, a := range got {
				So(a[0][0], ShouldEqual, 3)
			}
		})
	})

	Convey("Given equal-size teams in team mode", t, func() {
		got := collect(t, indices(8), []int{2, 2, 2, 2}, enumerate.ByTeam)

		Convey("Then team minima should be strictly increasing", func() {
			for _, a := range got {
				for i := 1; i < len(a); i++ {
					So(a[i][0], ShouldBeGreaterThan, a[i-1][0])
				}
			}
		})
	})
}

func TestWalk_Errors(t *testing.T) {
	Convey("Given inputs that violate the plan contract", t, func() {
		noop := func(enumerate.Assignment) bool { return true }

		Convey("When the roster size does not match the sizes", func() {
			err := enumerate.Walk(indices(5), []int{2, 2}, enumerate.ByTeam, noop)

			Convey("Then it should fail with expected and actual counts", func() {
				So(errors.Is(err, enumerate.ErrSizeMismatch), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "expected 4 participants, got 5")
			})
		})

		Convey("When a size is not positive", func() {
			err := enumerate.Walk(indices(2), []int{2, 0}, enumerate.ByTeam, noop)
			So(errors.Is(err, enumerate.ErrInvalidSize), ShouldBeTrue)
		})

		Convey("When an index repeats", func() {
			_, err := enumerate.All([]int{1, 1, 2, 3}, []int{2, 2}, enumerate.ByTeam)
			So(errors.Is(err, enumerate.ErrDuplicateIndex), ShouldBeTrue)
		})
	})
}

func TestAll_Lazy(t *testing.T) {
	Convey("Given a lazy sequence over a large roster", t, func() {
		seq, err := enumerate.All(indices(20), []int{5, 5, 5, 5}, enumerate.ByTeam)
		So(err, ShouldBeNil)

		Convey("When the consumer stops early", func() {
			n := 0
			for range seq {
				n++
				if n == 10 {
					break
				}
			}

			Convey("Then only the consumed assignments should be produced", func() {
				So(n, ShouldEqual, 10)
			})
		})
	})
}

func TestBranches(t *testing.T) {
	Convey("Given eight participants in two matches", t, func() {
		idx := indices(8)
		sizes := []int{2, 2, 2, 2}

		for _, mode := range []enumerate.Mode{enumerate.ByTeam, enumerate.ByMatch} {
			Convey("When walking every branch in "+mode.String()+" mode", func() {
				branches, err := enumerate.Branches(idx, sizes, mode)
				So(err, ShouldBeNil)

				var joined []enumerate.Assignment
				for _, first := range branches {
					err := enumerate.WalkBranch(idx, sizes, mode, first, func(a enumerate.Assignment) bool {
						joined = append(joined, a)
						return true
					})
					So(err, ShouldBeNil)
				}

				Convey("Then the concatenation should equal the sequential walk", func() {
					So(joined, ShouldResemble, collect(t, idx, sizes, mode))
				})
			})
		}

		Convey("When a branch does not hold the anchor", func() {
			err := enumerate.WalkBranch(idx, sizes, enumerate.ByTeam, []int{1, 2}, func(enumerate.Assignment) bool { return true })
			So(errors.Is(err, enumerate.ErrInvalidBranch), ShouldBeTrue)
		})

		Convey("When a branch is not a subset of the roster", func() {
			err := enumerate.WalkBranch(idx, sizes, enumerate.ByTeam, []int{0, 99}, func(enumerate.Assignment) bool { return true })
			So(errors.Is(err, enumerate.ErrInvalidBranch), ShouldBeTrue)
		})
	})
}

func TestCount(t *testing.T) {
	Convey("Given closed-form counting", t, func() {
		cases := []struct {
			n     int
			sizes []int
			mode  enumerate.Mode
		}{
			{4, []int{2, 2}, enumerate.ByTeam},
			{6, []int{3, 3}, enumerate.ByTeam},
			{8, []int{2, 2, 2, 2}, enumerate.ByTeam},
			{8, []int{2, 2, 2, 2}, enumerate.ByMatch},
			{8, []int{4, 4}, enumerate.ByMatch},
			{9, []int{3, 3, 3}, enumerate.ByTeam},
			{5, []int{2, 3}, enumerate.ByTeam},
		}

		Convey("Then it should agree with an exhaustive walk", func() {
			for _, c := range cases {
				got := collect(t, indices(c.n), c.sizes, c.mode)
				So(enumerate.Count(c.n, c.sizes, c.mode), ShouldEqual, uint64(len(got)))
			}
		})

		Convey("Then the 20 player 5v5+5v5 case should match the multinomial", func() {
			So(enumerate.Count(20, []int{5, 5, 5, 5}, enumerate.ByTeam), ShouldEqual, uint64(488864376))
		})

		Convey("Then invalid input should count zero", func() {
			So(enumerate.Count(5, []int{2, 2}, enumerate.ByTeam), ShouldEqual, uint64(0))
			So(enumerate.Count(2, []int{2, 0}, enumerate.ByTeam), ShouldEqual, uint64(0))
		})

		Convey("Then huge rosters should saturate instead of overflowing", func() {
			sizes := make([]int, 40)
			for i := range sizes {
				sizes[i] = 5
			}
			So(enumerate.Count(200, sizes, enumerate.ByMatch), ShouldEqual, uint64(math.MaxUint64))
		})
	})
}

func TestParseMode(t *testing.T) {
	Convey("Given mode names", t, func() {
		m, err := enumerate.ParseMode("Match")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, enumerate.ByMatch)

		m, err = enumerate.ParseMode("")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, enumerate.ByTeam)

		_, err = enumerate.ParseMode("league")
		So(errors.Is(err, enumerate.ErrUnknownMode), ShouldBeTrue)
	})
}
