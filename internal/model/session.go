package model

type Mode string

const (
	ModeWork       Mode = "work"
	ModeShortBreak Mode = "shortBreak"
	ModeLongBreak  Mode = "longBreak"
)

func (m Mode) Valid() bool {
	return m == ModeWork || m == ModeShortBreak || m == ModeLongBreak
}

const (
	DefaultWorkMinutes       = 25
	DefaultShortBreakMinutes = 5
	DefaultLongBreakMinutes  = 15

	MinMinutes           = 1
	MaxWorkMinutes       = 60
	MaxShortBreakMinutes = 30
	MaxLongBreakMinutes  = 60

	// LongBreakEvery is how many completed work intervals earn a long break.
	LongBreakEvery = 4
)

// Keys of the durable key-value entries.
const (
	KeyWorkMinutes        = "workMinutes"
	KeyShortBreakMinutes  = "shortBreakMinutes"
	KeyLongBreakMinutes   = "longBreakMinutes"
	KeyCompletedWorkCount = "completedWorkCount"
	KeyMuted              = "isMuted"
	KeyTasks              = "tasks"
)

type SessionConfig struct {
	WorkMinutes       int `json:"workMinutes"`
	ShortBreakMinutes int `json:"shortBreakMinutes"`
	LongBreakMinutes  int `json:"longBreakMinutes"`
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		WorkMinutes:       DefaultWorkMinutes,
		ShortBreakMinutes: DefaultShortBreakMinutes,
		LongBreakMinutes:  DefaultLongBreakMinutes,
	}
}

// MinutesFor returns the full countdown length of mode.
func (c SessionConfig) MinutesFor(mode Mode) int {
	switch mode {
	case ModeShortBreak:
		return c.ShortBreakMinutes
	case ModeLongBreak:
		return c.LongBreakMinutes
	default:
		return c.WorkMinutes
	}
}

// Clamped returns c with every duration forced into its allowed range.
func (c SessionConfig) Clamped() SessionConfig {
	return SessionConfig{
		WorkMinutes:       Clamp(c.WorkMinutes, MinMinutes, MaxWorkMinutes),
		ShortBreakMinutes: Clamp(c.ShortBreakMinutes, MinMinutes, MaxShortBreakMinutes),
		LongBreakMinutes:  Clamp(c.LongBreakMinutes, MinMinutes, MaxLongBreakMinutes),
	}
}

func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type SessionState struct {
	Mode               Mode `json:"mode"`
	RemainingMinutes   int  `json:"remainingMinutes"`
	RemainingSeconds   int  `json:"remainingSeconds"`
	IsRunning          bool `json:"isRunning"`
	CompletedWorkCount int  `json:"completedWorkCount"`
}

type AlarmState struct {
	IsAlarmActive bool `json:"isAlarmActive"`
	IsMuted       bool `json:"isMuted"`
}

// Snapshot is the externally visible view of the session controller.
type Snapshot struct {
	SessionState
	AlarmState
	Config SessionConfig `json:"config"`
}
