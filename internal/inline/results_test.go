package inline

import (
	"testing"

	"github.com/madved/inlineq/internal/catalog"
)

func TestResultsCloneIsDeep(t *testing.T) {
	t.Parallel()

	original := &Results{
		QueryID: 99,
		Items: []Result{
			&PhotoResult{
				ID: "p",
				Photo: catalog.Photo{Sizes: []catalog.PhotoSize{
					{Type: "m", File: catalog.FileRef{ID: 1}, Width: 320, Height: 240},
				}},
			},
			&AnimationResult{
				ID: "g",
				Animation: catalog.Animation{
					File:      catalog.FileRef{ID: 2},
					Thumbnail: &catalog.PhotoSize{Type: "t", File: catalog.FileRef{ID: 3}},
				},
			},
			&VoiceNoteResult{
				ID:        "v",
				VoiceNote: catalog.VoiceNote{File: catalog.FileRef{ID: 4}, Waveform: []byte{1, 2, 3}},
			},
		},
	}

	clone := original.Clone()
	if len(clone.Items) != len(original.Items) {
		t.Fatalf("clone items = %d, want %d", len(clone.Items), len(original.Items))
	}

	clone.Items[0].(*PhotoResult).Photo.Sizes[0].Width = 9999
	if original.Items[0].(*PhotoResult).Photo.Sizes[0].Width != 320 {
		t.Error("photo sizes are aliased")
	}

	clone.Items[1].(*AnimationResult).Animation.Thumbnail.Type = "x"
	if original.Items[1].(*AnimationResult).Animation.Thumbnail.Type != "t" {
		t.Error("animation thumbnail is aliased")
	}

	clone.Items[2].(*VoiceNoteResult).VoiceNote.Waveform[0] = 42
	if original.Items[2].(*VoiceNoteResult).VoiceNote.Waveform[0] != 1 {
		t.Error("voice note waveform is aliased")
	}
}
