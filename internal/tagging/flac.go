package tagging

import (
	"fmt"
	"strings"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

const fieldAlbumArtist = "ALBUMARTIST"

// updateFLAC replaces the title and artist fields of the Vorbis comment block,
// keeping every other comment. A block is added when the file has none.
func updateFLAC(path, title, artist string) (err error) {
	// go-flac panics on truncated streams, e.g. metadata without frames.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed FLAC stream: %v", r)
		}
	}()

	f, err := flac.ParseFile(path)
	if err != nil {
		return err
	}

	var comment *flacvorbis.MetaDataBlockVorbisComment
	index := -1
	for i, block := range f.Meta {
		if block.Type == flac.VorbisComment {
			comment, err = flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				return err
			}
			index = i
			break
		}
	}
	if comment == nil {
		comment = flacvorbis.New()
	}

	comment.Comments = dropFields(comment.Comments, flacvorbis.FIELD_TITLE, flacvorbis.FIELD_ARTIST, fieldAlbumArtist)
	for _, kv := range [][2]string{
		{flacvorbis.FIELD_TITLE, title},
		{flacvorbis.FIELD_ARTIST, artist},
		{fieldAlbumArtist, artist},
	} {
		if err := comment.Add(kv[0], kv[1]); err != nil {
			return err
		}
	}

	block := comment.Marshal()
	if index >= 0 {
		f.Meta[index] = &block
	} else {
		f.Meta = append(f.Meta, &block)
	}

	return f.Save(path)
}

// dropFields removes KEY=value comments whose key matches any of keys,
// case-insensitively as Vorbis comment keys are.
func dropFields(comments []string, keys ...string) []string {
	kept := comments[:0]
	for _, c := range comments {
		key := c
		if idx := strings.Index(c, "="); idx >= 0 {
			key = c[:idx]
		}
		drop := false
		for _, k := range keys {
			if strings.EqualFold(key, k) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, c)
		}
	}
	return kept
}
