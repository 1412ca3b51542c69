package main

import (
	"fmt"
	"io"
	"strings"

	"jtimer/backend/internal/client"
	"jtimer/backend/internal/model"
)

func printSnapshot(w io.Writer, snap model.Snapshot) {
	status := "paused"
	if snap.IsRunning {
		status = "running"
	}
	var flags []string
	if snap.IsMuted {
		flags = append(flags, "muted")
	}
	if snap.IsAlarmActive {
		flags = append(flags, "ALARM")
	}

	printf(w, "%s %02d:%02d %s, %d work intervals done", snap.Mode, snap.RemainingMinutes, snap.RemainingSeconds, status, snap.CompletedWorkCount)
	if len(flags) > 0 {
		printf(w, " [%s]", strings.Join(flags, ", "))
	}
	printf(w, "\n")
}

func printConfig(w io.Writer, cfg model.SessionConfig) {
	printf(w, "work %dm, short break %dm, long break %dm\n", cfg.WorkMinutes, cfg.ShortBreakMinutes, cfg.LongBreakMinutes)
}

func printTasks(w io.Writer, list client.TaskList) {
	for _, task := range list.Tasks {
		mark := " "
		if task.Completed {
			mark = "x"
		}
		printf(w, "[%s] %s  %s\n", mark, task.ID, task.Text)
	}
	printf(w, "%d/%d done\n", list.Stats.Done, list.Stats.Total)
}

func printPlayback(w io.Writer, playback model.Playback) {
	status := "paused"
	if playback.IsPlaying {
		status = "playing"
	}
	if playback.Track == nil {
		printf(w, "nothing queued (%s)\n", status)
		return
	}
	printf(w, "%s - %s (%s)\n", playback.Track.Name, strings.Join(playback.Track.Artists, ", "), status)
}

func printDevices(w io.Writer, devices []model.Device) {
	if len(devices) == 0 {
		printf(w, "no devices\n")
		return
	}
	for _, d := range devices {
		active := ""
		if d.IsActive {
			active = " *"
		}
		volume := ""
		if d.VolumePercent != nil {
			volume = fmt.Sprintf(" %d%%", *d.VolumePercent)
		}
		printf(w, "%s  %s (%s)%s%s\n", d.ID, d.Name, d.Type, volume, active)
	}
}
