package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/audiolibrelab/shaq/internal/audio"
	"github.com/audiolibrelab/shaq/internal/config"
	"github.com/audiolibrelab/shaq/internal/tagging"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Show resolved configuration and what would happen to a file",
	Long: `Display the resolved configuration with inheritance indicators. Shows which
values are inherited from the default profile and which are profile-specific.

When a file is given, also shows whether its tags can be edited and the name
--edit-title would give it for a sample title and artist.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()

		if len(args) == 1 {
			if err := printFileInfo(w, cfg, args[0]); err != nil {
				return err
			}
		}

		printResolvedConfig(w, cfg)
		return nil
	},
}

func printFileInfo(w io.Writer, c *config.Config, path string) error {
	name, err := tagging.RenderName(c.Output.RenameTemplate, "Title", "Artist")
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "=== FILE ===\n")
	fmt.Fprintf(w, "path: %s\n", path)
	fmt.Fprintf(w, "editable: %t\n", c.CanEdit(path) && tagging.Supported(path))
	fmt.Fprintf(w, "rename_preview: %s\n", filepath.Join(filepath.Dir(path), name+strings.ToLower(filepath.Ext(path))))
	fmt.Fprintln(w)
	return nil
}

func printResolvedConfig(w io.Writer, c *config.Config) {
	ind := func(field string) string {
		return getInheritanceIndicator(c.Inheritance[field])
	}

	fmt.Fprintf(w, "=== RESOLVED CONFIGURATION ===\n")

	p := audio.Params{
		Duration:   c.Capture.Duration,
		ChunkSize:  c.Capture.ChunkSize,
		Channels:   c.Capture.Channels,
		SampleRate: c.Capture.SampleRate,
	}

	fmt.Fprintf(w, "\n[Capture]\n")
	fmt.Fprintf(w, "duration: %d %s\n", c.Capture.Duration, ind("capture.duration"))
	fmt.Fprintf(w, "chunk_size: %d %s\n", c.Capture.ChunkSize, ind("capture.chunk_size"))
	fmt.Fprintf(w, "channels: %d %s\n", c.Capture.Channels, ind("capture.channels"))
	fmt.Fprintf(w, "sample_rate: %d %s\n", c.Capture.SampleRate, ind("capture.sample_rate"))
	fmt.Fprintf(w, "backend: %s %s\n", c.Capture.Backend, ind("capture.backend"))
	fmt.Fprintf(w, "device: %s %s\n", c.Capture.Device, ind("capture.device"))
	fmt.Fprintf(w, "chunks: %d x %d frames\n", p.ChunkCount(), p.ChunkSize)

	fmt.Fprintf(w, "\n[Recognizer]\n")
	fmt.Fprintf(w, "name: %s %s\n", c.Recognizer.Name, ind("recognizer.name"))
	fmt.Fprintf(w, "proxy: %s %s\n", c.Recognizer.Proxy, ind("recognizer.proxy"))
	fmt.Fprintf(w, "timeout_seconds: %d %s\n", c.Recognizer.TimeoutSeconds, ind("recognizer.timeout_seconds"))
	fmt.Fprintf(w, "language: %s %s\n", c.Recognizer.Language, ind("recognizer.language"))
	fmt.Fprintf(w, "country: %s %s\n", c.Recognizer.Country, ind("recognizer.country"))

	fmt.Fprintf(w, "\n[Output]\n")
	fmt.Fprintf(w, "json: %t %s\n", c.Output.JSON, ind("output.json"))
	fmt.Fprintf(w, "albumcover: %t %s\n", c.Output.AlbumCover, ind("output.albumcover"))
	fmt.Fprintf(w, "rename_template: %s %s\n", c.Output.RenameTemplate, ind("output.rename_template"))
	fmt.Fprintf(w, "editable_extensions: %s\n", strings.Join(c.EditableExtensions, ", "))
}

// getInheritanceIndicator returns a formatted indicator for inheritance status
func getInheritanceIndicator(status string) string {
	switch status {
	case "inherited":
		return "[inherited]"
	case "profile-specific":
		return "[profile-specific]"
	default:
		return "[default]"
	}
}
