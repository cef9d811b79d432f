package tagging

import (
	"github.com/bogem/id3v2/v2"
)

// updateMP3 writes TIT2, TPE1 and TPE2 frames, creating the ID3v2 tag when
// the file has none.
func updateMP3(path, title, artist string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(title)
	tag.SetArtist(artist)
	tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, artist)

	return tag.Save()
}
