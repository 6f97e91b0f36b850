package tasks

// TaskSchedulerInterface is what the HTTP layer needs to trigger feed refreshes.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	RefreshFeed(feedName string) error
}
