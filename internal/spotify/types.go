package spotify

import "jtimer/backend/internal/model"

type transferRequest struct {
	DeviceIDs []string `json:"device_ids"`
	Play      bool     `json:"play"`
}

type devicesResponse struct {
	Devices []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Type          string `json:"type"`
		IsActive      bool   `json:"is_active"`
		VolumePercent *int   `json:"volume_percent"`
	} `json:"devices"`
}

type currentlyPlayingResponse struct {
	IsPlaying bool       `json:"is_playing"`
	Item      *trackItem `json:"item"`
}

type trackItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

func (t *trackItem) toModel() *model.Track {
	if t == nil {
		return nil
	}
	track := &model.Track{
		ID:        t.ID,
		Name:      t.Name,
		AlbumName: t.Album.Name,
		Artists:   make([]string, 0, len(t.Artists)),
	}
	for _, a := range t.Artists {
		track.Artists = append(track.Artists, a.Name)
	}
	if len(t.Album.Images) > 0 {
		track.ImageURL = t.Album.Images[0].URL
	}
	return track
}
