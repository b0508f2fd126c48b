package health

// HTTP header constants.
const (
	// HeaderHealthToken carries the report authorization token.
	HeaderHealthToken = "X-Health-Token"
)

// Probe names, used as keys of the checks object.
const (
	ProbeDatabase  = "database"
	ProbeRedis     = "redis"
	ProbeCache     = "cache"
	ProbeDiskSpace = "disk_space"
)

// Response values.
const (
	// LiveBody is the plain text liveness response.
	LiveBody = "OK"

	// ReadyStatusReady is the readiness status when the critical dependency is reachable.
	ReadyStatusReady = "ready"

	// ReadyStatusError is the readiness status when the critical dependency failed.
	ReadyStatusError = "error"

	// StartupStatus is the startup probe status.
	StartupStatus = "starting_up"

	// UptimeSource describes how seconds_since_start is measured.
	UptimeSource = "process"
)

const (
	readySentinelValue  = "ok"
	reportSentinelValue = "test"

	bytesPerGB = 1024 * 1024 * 1024
)
