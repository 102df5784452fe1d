package catalog

import (
	"net/url"
	"strings"
	"sync"

	"github.com/madved/inlineq/internal/protocol"
)

// MemoryFileRegistry is an in-process FileRegistry. It assigns sequential
// handles and remembers the remote locator of every registered file.
type MemoryFileRegistry struct {
	mu     sync.Mutex
	nextID int64
	byRef  map[string]FileRef
}

// NewMemoryFileRegistry creates an empty in-process file registry.
func NewMemoryFileRegistry() *MemoryFileRegistry {
	return &MemoryFileRegistry{byRef: make(map[string]FileRef)}
}

// FromURL registers a remote file by URL. The URL must be absolute http(s).
func (r *MemoryFileRegistry) FromURL(rawURL string) (FileRef, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return FileRef{}, ErrBadURL
	}

	name := u.Path
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return r.register(u.String(), name), nil
}

// FromRef registers a file by its opaque remote reference.
func (r *MemoryFileRegistry) FromRef(ref string) (FileRef, error) {
	if ref == "" {
		return FileRef{}, ErrEmptyPayload
	}
	return r.register(ref, ""), nil
}

func (r *MemoryFileRegistry) register(ref, name string) FileRef {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.byRef[ref]; ok {
		return f
	}
	r.nextID++
	f := FileRef{ID: r.nextID, RemoteRef: ref, Name: name}
	r.byRef[ref] = f
	return f
}

// MemoryMediaCatalog resolves raw payloads using a file registry, with no
// caching beyond what the registry itself keeps.
type MemoryMediaCatalog struct {
	files FileRegistry
}

// NewMemoryMediaCatalog creates a catalog backed by the given file registry.
func NewMemoryMediaCatalog(files FileRegistry) *MemoryMediaCatalog {
	return &MemoryMediaCatalog{files: files}
}

// ResolveDocument resolves a raw document into its typed media object.
func (c *MemoryMediaCatalog) ResolveDocument(doc *protocol.Document) (ParsedDocument, error) {
	if doc == nil || doc.Ref == "" {
		return ParsedDocument{}, ErrEmptyPayload
	}

	file, err := c.files.FromRef(doc.Ref)
	if err != nil {
		return ParsedDocument{}, err
	}

	var thumb *PhotoSize
	if doc.ThumbURL != "" {
		if tf, err := c.files.FromURL(doc.ThumbURL); err == nil {
			thumb = &PhotoSize{Type: "t", File: tf}
		}
	}

	parsed := ParsedDocument{Kind: doc.Kind}
	switch doc.Kind {
	case protocol.DocumentAnimation:
		parsed.Animation = &Animation{File: file, Thumbnail: thumb, FileName: doc.FileName,
			MimeType: doc.MimeType, Duration: doc.Duration, Width: doc.Width, Height: doc.Height}
	case protocol.DocumentAudio:
		parsed.Audio = &Audio{File: file, Thumbnail: thumb, Title: doc.Title, Performer: doc.Performer,
			FileName: doc.FileName, MimeType: doc.MimeType, Duration: doc.Duration}
	case protocol.DocumentGeneral:
		parsed.Document = &Document{File: file, Thumbnail: thumb, FileName: doc.FileName, MimeType: doc.MimeType}
	case protocol.DocumentSticker:
		parsed.Sticker = &Sticker{File: file, Thumbnail: thumb, Emoji: doc.Emoji, Width: doc.Width, Height: doc.Height}
	case protocol.DocumentVideo:
		parsed.Video = &Video{File: file, Thumbnail: thumb, FileName: doc.FileName, MimeType: doc.MimeType,
			Duration: doc.Duration, Width: doc.Width, Height: doc.Height}
	case protocol.DocumentVoiceNote:
		parsed.VoiceNote = &VoiceNote{File: file, MimeType: doc.MimeType, Duration: doc.Duration,
			Waveform: append([]byte(nil), doc.Waveform...)}
	default:
		return ParsedDocument{}, ErrEmptyPayload
	}
	return parsed, nil
}

// ResolvePhoto resolves a raw photo and all of its size variants.
func (c *MemoryMediaCatalog) ResolvePhoto(photo *protocol.Photo) (Photo, error) {
	if photo == nil || len(photo.Sizes) == 0 {
		return Photo{}, ErrEmptyPayload
	}

	out := Photo{Sizes: make([]PhotoSize, 0, len(photo.Sizes))}
	for _, s := range photo.Sizes {
		if s.Ref == "" {
			continue
		}
		f, err := c.files.FromRef(s.Ref)
		if err != nil {
			continue
		}
		out.Sizes = append(out.Sizes, PhotoSize{Type: s.Type, File: f, Width: s.Width, Height: s.Height})
	}
	if len(out.Sizes) == 0 {
		return Photo{}, ErrEmptyPayload
	}
	return out, nil
}
