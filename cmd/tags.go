package cmd

import (
	"fmt"

	"github.com/audiolibrelab/shaq/internal/tagging"

	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags [file]",
	Short: "Show the current tags of an audio file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := tagging.Read(args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "file: %s\n", info.Path)
		fmt.Fprintf(w, "format: %s (%s)\n", info.Format, info.FileType)
		fmt.Fprintf(w, "title: %s\n", info.Title)
		fmt.Fprintf(w, "artist: %s\n", info.Artist)
		fmt.Fprintf(w, "album_artist: %s\n", info.AlbumArtist)
		fmt.Fprintf(w, "album: %s\n", info.Album)
		return nil
	},
}
