package models

type SessionState string

const (
	SessionIdle     SessionState = "idle"
	SessionStarting SessionState = "starting"
	SessionPlaying  SessionState = "playing"
	SessionStopped  SessionState = "stopped"
)
