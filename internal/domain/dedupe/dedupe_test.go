package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/domain/dedupe"
	"github.com/okian/fairway/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTracker(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new tracker", t, func() {
		tr := dedupe.NewTracker()
		key := model.RecomputeJob{SeasonID: uuid.New(), PlayerID: uuid.New()}.Key()

		So(tr.Size(), ShouldEqual, 0)

		Convey("When a key is marked for the first time", func() {
			pending := tr.MarkPending(ctx, key)

			Convey("Then it was not pending and is now tracked", func() {
				So(pending, ShouldBeFalse)
				So(tr.Size(), ShouldEqual, 1)
			})

			Convey("And marked again before completion", func() {
				So(tr.MarkPending(ctx, key), ShouldBeTrue)
				So(tr.Size(), ShouldEqual, 1)
			})

			Convey("And completed", func() {
				tr.Done(ctx, key)

				Convey("Then a new request is accepted again", func() {
					So(tr.Size(), ShouldEqual, 0)
					So(tr.MarkPending(ctx, key), ShouldBeFalse)
				})
			})
		})

		Convey("When completing an unknown key", func() {
			tr.Done(ctx, "nope")
			So(tr.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given a bounded tracker", t, func() {
		tr := dedupe.NewTracker(dedupe.WithMaxSize(2))
		tr.MarkPending(ctx, "a")
		tr.MarkPending(ctx, "b")

		Convey("When it is full", func() {
			Convey("Then new keys are never reported as pending", func() {
				So(tr.MarkPending(ctx, "c"), ShouldBeFalse)
				So(tr.MarkPending(ctx, "c"), ShouldBeFalse)
				So(tr.Size(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given concurrent callers on the same key", t, func() {
		tr := dedupe.NewTracker(dedupe.WithMaxSize(0))
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !tr.MarkPending(ctx, "season/player") {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one caller wins", func() {
			So(fresh, ShouldEqual, 1)
			So(tr.Size(), ShouldEqual, 1)
		})
	})

	Convey("Given many distinct keys", t, func() {
		tr := dedupe.NewTracker(dedupe.WithMaxSize(0))
		for i := 0; i < 100; i++ {
			So(tr.MarkPending(ctx, fmt.Sprintf("k-%d", i)), ShouldBeFalse)
		}
		So(tr.Size(), ShouldEqual, 100)
	})
}
