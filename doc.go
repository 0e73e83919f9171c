// Package lazyiter runs long loops inside a single-threaded, event-driven
// host without monopolizing it.
//
// Loops are executed in short synchronous bursts. After each burst the
// iterator yields to the host and resumes later, either as soon as possible
// or after a short adaptive delay, so other host tasks keep running while a
// loop over thousands of elements is in progress.
//
// # Basic Usage
//
//	loop := eventloop.New()
//	it := lazyiter.New(yield.ForHost(loop))
//
//	err := lazyiter.ForEach(it, []string{"a", "b", "c"}, func(v string, i int) error {
//		fmt.Println(i, v)
//		return nil
//	}, func() {
//		fmt.Println("done")
//	})
//	if err != nil {
//		return err
//	}
//	return loop.Run(ctx)
//
// # Speeds
//
// The speed controls how long a burst may run before it considers yielding.
// Seven presets exist, from "limp" (yield after every step) to "ninja"
// (60ms bursts); "normal" (5ms) is the default. A plain number is read as
// milliseconds, and unknown labels fall back to normal:
//
//	lazyiter.Repeat(it.Fast(), 1000, work, done)
//	lazyiter.Repeat(it.Speed("20"), 1000, work, done)
//
// # Stopping Early
//
// A step callback returns ErrStop to end the loop. The completion callback
// still runs. Any other error aborts the loop: the completion callback is
// not called and the error surfaces from the host's Run.
package lazyiter
