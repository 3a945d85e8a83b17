// Package task provides cooperative, single-threaded tasks for game logic.
//
// A Task is a resumable computation that runs a little each frame. Tasks
// are written either as coroutine bodies that suspend in the middle of a
// loop:
//
//	blink := task.New("Blink", func(co *task.Co) task.Void {
//		for i := 0; i < 3; i++ {
//			sprite.Visible = !sprite.Visible
//			co.WaitSeconds(0.25, clock.TimeFunc(gametime.Game))
//		}
//		return task.Void{}
//	})
//
// or as explicit state machines with Step. Both forms satisfy Runner and
// can be combined with WaitForAll, WaitForAny, CancelIf and Timeout.
//
// A Manager owns a list of tasks and resumes each exactly once per Update.
// Run returns a strong Handle that controls the task's lifetime; RunManaged
// returns a WeakHandle and leaves the lifetime to the manager.
//
// Killing a suspended coroutine unwinds it: the body's deferred calls run
// before Kill returns, which is how a body releases tokens it holds.
//
// Nothing in this package is safe for concurrent use. All tasks are driven
// from the goroutine that owns the frame loop.
package task
