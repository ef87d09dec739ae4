package tasks

// TaskSchedulerInterface is the scheduler contract used by the main
// application and the HTTP API. TriggerRun starts a manual ingestion run and
// returns ErrRunInProgress when one is already active; State exposes the
// current run state and the number of ticks skipped because a run was still
// in flight.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	TriggerRun() error
	State() (RunState, int)
	EnqueueTask(task TaskInterface) error
}

// completionTask is implemented by tasks that belong to an ingestion run and
// must signal their final outcome, after all retries are spent, so the run
// can transition back to idle.
type completionTask interface {
	Complete(err error)
}
