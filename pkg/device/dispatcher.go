// Package device executes opaque JSON device commands issued by the remote
// assistant during a turn.
package device

// Task is one pending asynchronous device execution. Callers may only wait
// for completion; results stay inside the dispatcher.
type Task interface {
	Wait()
}

// Dispatcher accepts a parsed device-command payload and returns zero or more
// pending tasks. The turn controller joins all of them before finishing the
// turn; timeouts, if any, are the dispatcher's concern.
type Dispatcher interface {
	Dispatch(command map[string]any) []Task
}

// WaitAll joins a set of tasks in no particular order.
func WaitAll(tasks []Task) {
	for _, task := range tasks {
		task.Wait()
	}
}
