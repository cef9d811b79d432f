package tagging

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// Info is the tag content shown by the tags command.
type Info struct {
	Path        string
	Format      string
	FileType    string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
}

// Read returns the current tags of any file format dhowden/tag understands.
func Read(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	return &Info{
		Path:        path,
		Format:      string(m.Format()),
		FileType:    string(m.FileType()),
		Title:       m.Title(),
		Artist:      m.Artist(),
		AlbumArtist: m.AlbumArtist(),
		Album:       m.Album(),
	}, nil
}
