package model

type Track struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Artists   []string `json:"artists"`
	AlbumName string   `json:"albumName"`
	ImageURL  string   `json:"imageUrl,omitempty"`
}

type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"isActive"`
	VolumePercent *int   `json:"volumePercent,omitempty"`
}

// Playback is the last known state of the external player.
type Playback struct {
	Track     *Track   `json:"track,omitempty"`
	IsPlaying bool     `json:"isPlaying"`
	Devices   []Device `json:"devices,omitempty"`
}
